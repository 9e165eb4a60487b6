package config

type (
	DriverConfig struct {
		PostgresDB PostgresDB
		Redis      Redis
		Logger     Logger
		RabbitMQ   RabbitMQ
		Minio      Minio
	}
	PostgresDB struct {
		Host         string
		Port         string
		Username     string
		Password     string
		DBName       string
		SSLMode      string
		MaxOpenConns int
		MaxIdleConns int

		ConnMaxLifetimeInMinutes int
		ApplicationName          string
	}
	Redis struct {
		Enabled  bool
		Host     string
		Port     string
		Password string
		DB       int
	}
	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
	RabbitMQ struct {
		Enabled     bool
		Port        string
		Host        string
		Username    string
		Password    string
		VirtualHost string
	}
	Minio struct {
		Enabled  bool
		Port     string
		Host     string
		Username string
		Password string
		UseSSL   bool
	}
)
