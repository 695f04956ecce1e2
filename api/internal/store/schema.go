// Package store persists soil tests and farm plans in Postgres.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

var ErrNotFound = sql.ErrNoRows

const schema = `
create table if not exists soil_tests (
  id               text primary key,
  user_id          text not null,
  test_date        timestamptz not null default now(),
  location         text not null default '',
  ph               double precision not null,
  nitrogen         double precision not null,
  phosphorus       double precision not null,
  potassium        double precision not null,
  organic_matter   double precision not null,
  other_nutrients  jsonb,
  recommendations  text not null default '',
  image_url        text not null default ''
);
create index if not exists soil_tests_user_idx on soil_tests(user_id, test_date desc);

create table if not exists farm_plans (
  id           text primary key,
  user_id      text not null,
  crop         text not null,
  land_acres   double precision not null,
  sowing_date  date not null,
  created_at   timestamptz not null default now()
);
create index if not exists farm_plans_user_idx on farm_plans(user_id, created_at desc);

create table if not exists calendar_tasks (
  id             text primary key,
  farm_plan_id   text not null references farm_plans(id) on delete cascade,
  task_date      date not null,
  stage          text not null default '',
  title          text not null default '',
  description    text not null default '',
  quantity_hint  text not null default '',
  completed      boolean not null default false,
  completed_at   timestamptz
);
create index if not exists calendar_tasks_plan_idx on calendar_tasks(farm_plan_id, task_date);
`

// Open connects with the pgx driver and tunes the pool.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// DSNSummary renders host, port, db and user of dsn for logs, leaving out
// the password.
func DSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
