package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const (
	postgresConnectAttemptsDefault = 20
	postgresConnectDelayDefault    = 2 * time.Second
)

type postgresDSNInfo struct {
	User     string
	Password string
	Host     string
	Port     string
	DBName   string
	SSLMode  string
}

// openPostgresWithRetry pings until the server answers, creating the
// database once if the server reports it missing.
func openPostgresWithRetry(ctx context.Context, dsn string, attempts int, delay time.Duration) (*sql.DB, error) {
	if attempts <= 0 {
		attempts = postgresConnectAttemptsDefault
	}
	if delay <= 0 {
		delay = postgresConnectDelayDefault
	}

	var lastErr error
	created := false
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			pingErr := db.PingContext(ctx)
			if pingErr == nil {
				return db, nil
			}
			err = pingErr
		}
		if db != nil {
			_ = db.Close()
		}
		lastErr = err
		if !created && isDatabaseMissingError(err) {
			if createErr := ensurePostgresDatabase(ctx, dsn); createErr == nil {
				created = true
				continue
			} else {
				lastErr = createErr
			}
		}
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("postgres connection failed")
	}
	return nil, lastErr
}

func ensurePostgresDatabase(ctx context.Context, dsn string) error {
	info, ok := parsePostgresDSNInfo(dsn)
	if !ok || info.DBName == "" || info.Host == "" || info.User == "" {
		return fmt.Errorf("database info not found in dsn")
	}
	db, err := sql.Open("postgres", info.buildURL("postgres"))
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	query := fmt.Sprintf("CREATE DATABASE %s", quoteIdentifier(info.DBName))
	if _, err := db.ExecContext(ctx, query); err != nil && !isDatabaseExistsError(err) {
		return err
	}
	return nil
}

func parsePostgresDSNInfo(dsn string) (postgresDSNInfo, bool) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return postgresDSNInfo{}, false
	}
	if strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://") {
		if info, ok := parsePostgresURL(trimmed); ok {
			return info, true
		}
	}
	return parsePostgresKeyValue(trimmed)
}

func parsePostgresURL(raw string) (postgresDSNInfo, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return postgresDSNInfo{}, false
	}
	info := postgresDSNInfo{
		Host:    u.Hostname(),
		Port:    u.Port(),
		DBName:  strings.TrimPrefix(u.Path, "/"),
		SSLMode: u.Query().Get("sslmode"),
	}
	if u.User != nil {
		info.User = u.User.Username()
		if pass, ok := u.User.Password(); ok {
			info.Password = pass
		}
	}
	info.applyDefaults()
	return info, true
}

func parsePostgresKeyValue(raw string) (postgresDSNInfo, bool) {
	info := postgresDSNInfo{}
	for _, part := range strings.Fields(raw) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		val := strings.Trim(kv[1], `"'`)
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "user", "username":
			info.User = val
		case "password":
			info.Password = val
		case "host":
			info.Host = val
		case "port":
			info.Port = val
		case "dbname", "database":
			info.DBName = val
		case "sslmode":
			info.SSLMode = val
		}
	}
	if info.Host == "" && info.User == "" && info.DBName == "" {
		return postgresDSNInfo{}, false
	}
	info.applyDefaults()
	return info, true
}

func (p *postgresDSNInfo) applyDefaults() {
	if p.Port == "" {
		p.Port = "5432"
	}
	if p.SSLMode == "" {
		p.SSLMode = "disable"
	}
}

func (p postgresDSNInfo) buildURL(dbName string) string {
	host := p.Host
	if host != "" {
		host = net.JoinHostPort(host, p.Port)
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   host,
		Path:   "/" + dbName,
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}
	q := u.Query()
	if strings.TrimSpace(p.SSLMode) != "" {
		q.Set("sslmode", p.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func isDatabaseMissingError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") && strings.Contains(msg, "database")
}

func isDatabaseExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") && strings.Contains(msg, "database")
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
