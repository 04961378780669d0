package config

type Config struct {
	Rotation Rotation
	Rest     Rest
	Ws       Ws
}

type Rotation struct {
	DefaultIntervalSec int `envconfig:"ROTATION_DEFAULT_INTERVAL_SEC" default:"60"`
}

type Ws struct {
	PingIntervalSec int64 `envconfig:"WS_PING_INTERVAL_SEC" default:"30"`
}

type Rest struct {
	Address           string `envconfig:"ADDRESS" default:":8080"`
	ReadTimeout       int64  `envconfig:"READ_TIMEOUT" default:"15"`
	WriteTimeout      int64  `envconfig:"WRITE_TIMEOUT" default:"15"`
	ReadHeaderTimeout int64  `envconfig:"READ_HEADER_TIMEOUT" default:"5"`
	IdleTimeout       int64  `envconfig:"IDLE_TIMEOUT" default:"60"`
}
