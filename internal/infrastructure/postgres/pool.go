package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

const defaultMaxConns = 25

// NewPool crea el pool con los límites de cfg y verifica la conexión con un ping.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pc, err := poolConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}

// poolConfig traduce DBConfig a pgxpool.Config sin abrir conexiones.
func poolConfig(ctx context.Context, cfg config.DBConfig) (*pgxpool.Config, error) {
	dsn := cfg.ConnectionString()
	if cfg.ForceIPv4 {
		dsn = dsnWithIPv4(ctx, cfg)
	}
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	if cfg.ForceIPv4 {
		// Docker suele no tener IPv6 y algunos proveedores publican solo AAAA por defecto.
		pc.ConnConfig.DialFunc = dialIPv4
	}
	if cfg.ConnectTimeoutSeconds > 0 {
		pc.ConnConfig.ConnectTimeout = time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
	}
	if cfg.ApplicationName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}
	// Una espera de bloqueo que vence (55P03) se reintenta como conflicto.
	if cfg.LockTimeoutMillis > 0 {
		pc.ConnConfig.RuntimeParams["lock_timeout"] = strconv.Itoa(cfg.LockTimeoutMillis)
	}

	pc.MaxConns = int32(cfg.MaxConns)
	if pc.MaxConns <= 0 {
		pc.MaxConns = defaultMaxConns
	}
	pc.MinConns = int32(cfg.MinConns)
	if pc.MinConns > pc.MaxConns {
		pc.MinConns = pc.MaxConns
	}
	if cfg.MaxConnLifetimeMinutes > 0 {
		pc.MaxConnLifetime = time.Duration(cfg.MaxConnLifetimeMinutes) * time.Minute
	}
	if cfg.MaxConnIdleMinutes > 0 {
		pc.MaxConnIdleTime = time.Duration(cfg.MaxConnIdleMinutes) * time.Minute
	}
	if cfg.HealthCheckSeconds > 0 {
		pc.HealthCheckPeriod = time.Duration(cfg.HealthCheckSeconds) * time.Second
	}

	// NUMERIC <-> shopspring/decimal en todas las conexiones.
	pc.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	return pc, nil
}

// dsnWithIPv4 reescribe el host del DSN por su IPv4 cuando se puede resolver.
func dsnWithIPv4(ctx context.Context, cfg config.DBConfig) string {
	if cfg.DatabaseURL == "" {
		if ip, err := resolveIPv4(ctx, cfg.Host); err == nil {
			cfg.Host = ip
		}
		return cfg.DSN()
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil {
		return cfg.DatabaseURL
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	ip, err := resolveIPv4(ctx, u.Hostname())
	if err != nil {
		return cfg.DatabaseURL
	}
	u.Host = net.JoinHostPort(ip, port)
	return u.String()
}

func dialIPv4(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ip, err := resolveIPv4(ctx, host)
	if err != nil {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ip, port))
}

// publicResolver consulta 8.8.8.8 cuando el DNS del contenedor solo devuelve IPv6.
var publicResolver = &net.Resolver{
	PreferGo: true,
	Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "udp", "8.8.8.8:53")
	},
}

// resolveIPv4 devuelve host si ya es IPv4; si es nombre, prueba el resolver local y luego el público.
func resolveIPv4(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return host, nil
		}
		return "", fmt.Errorf("%s es IPv6", host)
	}
	if ip, err := lookupIPv4(ctx, net.DefaultResolver, host); err == nil {
		return ip, nil
	}
	return lookupIPv4(ctx, publicResolver, host)
}

func lookupIPv4(ctx context.Context, r *net.Resolver, host string) (string, error) {
	ips, err := r.LookupIP(ctx, "ip4", host)
	if err != nil {
		return "", err
	}
	for _, ip := range ips {
		if ip.To4() != nil {
			return ip.String(), nil
		}
	}
	return "", fmt.Errorf("%s sin IPv4", host)
}
