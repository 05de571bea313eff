package database

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

type Opts struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string
	Logger             *zap.Logger // nil: gorm's default stdout logger
}

// NewGorm opens the marketplace database. Services open their own
// transactions, so gorm's implicit per-write transaction is skipped.
func NewGorm(o Opts) (*gorm.DB, error) {
	dial, err := dialector(o)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dial, &gorm.Config{
		Logger:                 gormLogger(o),
		TranslateError:         true,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.Driver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	return db, nil
}

func dialector(o Opts) (gorm.Dialector, error) {
	switch o.Driver {
	case "postgres":
		return postgres.Open(o.DSN), nil
	case "mysql":
		dsn := normalizeMySQLDSN(o.DSN, o.Username, o.Password)
		if o.Logger != nil {
			o.Logger.Info("mysql dsn normalized", zap.String("dsn", maskDSN(dsn)))
		}
		return mysql.Open(dsn), nil
	}
	return nil, ErrUnsupportedDriver
}

var gormLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

func gormLogger(o Opts) logger.Interface {
	lvl, ok := gormLevels[o.LogLevel]
	if !ok {
		lvl = logger.Warn
	}
	if o.Logger == nil {
		return logger.Default.LogMode(lvl)
	}
	return logger.New(zap.NewStdLog(o.Logger.Named("gorm")), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	})
}

// maskDSN hides the password in user:pass@tcp(...) DSNs.
func maskDSN(dsn string) string {
	at := strings.Index(dsn, "@")
	if at <= 0 {
		return dsn
	}
	colon := strings.Index(dsn[:at], ":")
	if colon <= 0 {
		return dsn
	}
	return dsn[:colon+1] + "****" + dsn[at:]
}

// jdbcParams translates connector parameters copied from JDBC URLs into
// go-sql-driver ones. An empty target drops the parameter.
var jdbcParams = map[string]func(q url.Values, v string){
	"characterEncoding": func(q url.Values, v string) {
		if q.Get("charset") == "" {
			q.Set("charset", v)
		}
	},
	"useUnicode":           nil,
	"zeroDateTimeBehavior": nil,
	"serverTimezone":       func(q url.Values, v string) { q.Set("loc", v) },
	"useSSL": func(q url.Values, v string) {
		switch strings.ToLower(v) {
		case "true", "1":
			q.Set("tls", "true")
		case "skip-verify", "preferred":
			q.Set("tls", strings.ToLower(v))
		default:
			q.Set("tls", "false")
		}
	},
}

// normalizeMySQLDSN accepts native DSNs unchanged and rewrites mysql:// or
// jdbc:mysql:// URLs into user:pass@tcp(host:port)/db?params. Credentials
// come from the URL, then user/password query params, then the overrides.
func normalizeMySQLDSN(input, userOverride, passOverride string) string {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		return strings.TrimSpace(input)
	}
	u, err := url.Parse(in)
	if err != nil {
		return in // the driver reports it
	}

	q := u.Query()
	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	user = firstNonEmpty(userOverride, q.Get("user"), user)
	pass = firstNonEmpty(passOverride, q.Get("password"), pass)
	q.Del("user")
	q.Del("password")

	for name, apply := range jdbcParams {
		v := q.Get(name)
		q.Del(name)
		if v != "" && apply != nil {
			apply(q, v)
		}
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "true")
	}
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}

	var b strings.Builder
	if user != "" || pass != "" {
		b.WriteString(user)
		if pass != "" {
			b.WriteString(":" + pass)
		}
		b.WriteString("@")
	}
	fmt.Fprintf(&b, "tcp(%s)/%s?%s", u.Host, strings.TrimPrefix(u.Path, "/"), q.Encode())
	return b.String()
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
