package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       Server      `mapstructure:"server"`
	Postgres     Postgres    `mapstructure:"postgres"`
	Broker       Broker      `mapstructure:"broker"`
	Cron         Cron        `mapstructure:"cron"`
	Relay        RelayConfig `mapstructure:"relay"`
	HTTPClient   HTTPClient  `mapstructure:"httpClient"`
	Directory    Directory   `mapstructure:"directory"`
	Recurrence   Recurrence  `mapstructure:"recurrence"`
	LoggingLevel string      `mapstructure:"logging-level"`
}

type Server struct {
	Port          string `mapstructure:"port"`
	SwaggerUrl    string `mapstructure:"swagger_json"`
	SwaggerHost   string `mapstructure:"swagger_host"`
	SwaggerSchema string `mapstructure:"swagger_schema"`
	BodyLimit     int    `mapstructure:"body_limit"`
}

type Postgres struct {
	ConnString     string `mapstructure:"conn_string"`
	MaxConnections int32  `mapstructure:"max_connections"`
	MigrationsDir  string `mapstructure:"migrations_dir"`
}

type Broker struct {
	Kafka Kafka `mapstructure:"kafka"`
}

type Kafka struct {
	Brokers       string `mapstructure:"brokers"`
	ReaderTopic   string `mapstructure:"readerTopic"` // связи родитель-ребёнок из сервиса пользователей
	ReaderGroupID string `mapstructure:"readerGroupId"`
	ReaderUsr     string `mapstructure:"readerUsr"`
	ReaderUsrPwd  string `mapstructure:"readerUsrPwd"`
	WriterTopic   string `mapstructure:"writerTopic"` // уведомления об изменениях событий
	WriterUsr     string `mapstructure:"writerUsr"`
	WriterUsrPwd  string `mapstructure:"writerUsrPwd"`
	MaxAttempts   int    `mapstructure:"maxAttempts"`
}

type Cron struct {
	DaysToDelete int    `mapstructure:"daysToDelete"` // Сколько дней хранить завершившиеся события
	Schedule     string `mapstructure:"schedule"`     // Расписание в формате cron (например, "0 16 * * *" - каждый день в 16:00)
	Interval     string `mapstructure:"interval"`     // Интервал в формате "@every 1m" (например, "@every 1m" - каждую минуту)
	// Приоритет: если указан Schedule, используется он, иначе Interval
}

type RelayConfig struct {
	Workers     int           `mapstructure:"workers"`
	BatchSize   int           `mapstructure:"batchSize"`
	Lease       time.Duration `mapstructure:"lease"`
	PollPeriod  time.Duration `mapstructure:"pollPeriod"`
	MaxAttempts int           `mapstructure:"maxAttempts"`
}

type HTTPClient struct {
	ConnectTimeout        time.Duration `mapstructure:"connectTimeout"`        // TCP коннект
	TLSHandshakeTimeout   time.Duration `mapstructure:"TLSHandshakeTimeout"`   // TLS рукопожатие
	ResponseHeaderTimeout time.Duration `mapstructure:"responseHeaderTimeout"` // ожидание заголовков ответа
	ExpectContinueTimeout time.Duration `mapstructure:"expectContinueTimeout"` // 100-continue

	// Пул соединений
	IdleConnTimeout     time.Duration `mapstructure:"idleConnTimeout"`
	MaxIdleConns        int           `mapstructure:"maxIdleConns"`
	MaxIdleConnsPerHost int           `mapstructure:"maxIdleConnsPerHost"`
	MaxConnsPerHost     int           `mapstructure:"maxConnsPerHost"`
	KeepAlives          bool          `mapstructure:"keepAlives"`

	// Общий таймаут клиента. 0 - контролируем дедлайном через context.
	ClientTimeout time.Duration `mapstructure:"clientTimeout"`

	UserAgent  string `mapstructure:"userAgent"`
	MaxRetries int    `mapstructure:"maxRetries"`

	InsecureSkipVerify bool `mapstructure:"insecureSkipVerify"` // отключить проверку SSL сертификатов
}

const (
	DirectoryPostgres = "postgres"
	DirectoryHTTP     = "http"
)

// Directory откуда брать связи родитель-ребёнок
type Directory struct {
	Mode    string        `mapstructure:"mode"`    // postgres | http
	BaseURL string        `mapstructure:"baseUrl"` // для mode=http
	Timeout time.Duration `mapstructure:"timeout"`
}

type Recurrence struct {
	MaxIterations int `mapstructure:"maxIterations"` // потолок шагов при разворачивании одного события
}

var defaults = map[string]any{
	"server.port":              "8080",
	"server.body_limit":        4 * 1024 * 1024,
	"postgres.max_connections": 5,
	"postgres.migrations_dir":  "resources/migrations",

	"broker.kafka.readerTopic":   "family-links",
	"broker.kafka.readerGroupId": "familycal",
	"broker.kafka.writerTopic":   "calendar-notifications",
	"broker.kafka.maxAttempts":   5,

	"cron.daysToDelete": 365,
	"cron.schedule":     "0 0 3 * * *",

	"relay.workers":     2,
	"relay.batchSize":   50,
	"relay.lease":       30 * time.Second,
	"relay.pollPeriod":  time.Second,
	"relay.maxAttempts": 10,

	"httpClient.connectTimeout":        3 * time.Second,
	"httpClient.TLSHandshakeTimeout":   3 * time.Second,
	"httpClient.responseHeaderTimeout": 5 * time.Second,
	"httpClient.idleConnTimeout":       90 * time.Second,
	"httpClient.maxIdleConns":          100,
	"httpClient.maxIdleConnsPerHost":   10,
	"httpClient.keepAlives":            true,
	"httpClient.userAgent":             "familycal",
	"httpClient.maxRetries":            3,

	"directory.mode":    DirectoryPostgres,
	"directory.timeout": 2 * time.Second,

	"recurrence.maxIterations": 100000,

	"logging-level": "info",
}

func NewConfig() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	// Настраиваем замену точек и дефисов на подчеркивания для переменных окружения
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	var conf Config
	err := v.ReadInConfig()
	// Игнорируем ошибку, если файл не найден - используем только переменные окружения
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return conf, err
		}
	}

	err = v.Unmarshal(&conf)

	return conf, err
}
