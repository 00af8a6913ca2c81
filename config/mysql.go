package config

import "fmt"

// MySQL 数据库配置
type MySQL struct {
	// Driver mysql 或 sqlite，sqlite 时 DSN 为文件路径
	Driver   string `json:"driver" yaml:"driver"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	Charset  string `json:"charset" yaml:"charset"`
	// DSN 不为空时直接使用
	DSN string `json:"dsn" yaml:"dsn"`
}

func (m *MySQL) Dsn() string {
	if m.DSN != "" {
		return m.DSN
	}
	charset := m.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
		m.Username, m.Password, m.Host, m.Port, m.Database, charset)
}
