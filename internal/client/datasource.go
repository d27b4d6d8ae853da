package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DatasourceType describes a provider the add-datasource wizard offers.
type DatasourceType struct {
	ID     string
	Name   string
	Driver string
	Kind   string
}

// Datasource kinds.
const (
	KindRemote   = "remote"
	KindEmbedded = "embedded"
)

// DatasourceTypes lists the providers the server ships drivers for, in
// display order.
func DatasourceTypes() []DatasourceType {
	return []DatasourceType{
		{ID: "postgresql", Name: "PostgreSQL", Driver: "postgresql.default", Kind: KindRemote},
		{ID: "mysql", Name: "MySQL", Driver: "mysql.default", Kind: KindRemote},
		{ID: "clickhouse-node", Name: "ClickHouse", Driver: "clickhouse.node", Kind: KindRemote},
		{ID: "duckdb", Name: "DuckDB", Driver: "duckdb.default", Kind: KindEmbedded},
		{ID: "pglite", Name: "PGlite", Driver: "pglite.default", Kind: KindEmbedded},
		{ID: "gsheet-csv", Name: "Google Sheets", Driver: "gsheet-csv.duckdb", Kind: KindRemote},
		{ID: "json-online", Name: "JSON (URL)", Driver: "json-online.duckdb", Kind: KindRemote},
		{ID: "parquet-online", Name: "Parquet (URL)", Driver: "parquet-online.duckdb", Kind: KindRemote},
		{ID: "s3", Name: "Amazon S3", Driver: "s3.duckdb", Kind: KindRemote},
	}
}

// LookupDatasourceType finds a provider by id.
func LookupDatasourceType(id string) (DatasourceType, bool) {
	for _, t := range DatasourceTypes() {
		if t.ID == id {
			return t, true
		}
	}
	return DatasourceType{}, false
}

// embedded reports whether provider runs in-process and needs no
// connection details.
func embedded(provider string) bool {
	switch provider {
	case "duckdb", "duckdb-wasm", "pglite":
		return true
	}
	return false
}

// ConnectionToRawConfig spreads a single connection string over every key a
// provider might read it from.
func ConnectionToRawConfig(connection string) map[string]any {
	cfg := map[string]any{}
	value := strings.TrimSpace(connection)
	if value == "" {
		return cfg
	}
	for _, k := range []string{"connectionUrl", "connectionString", "url", "sharedLink", "jsonUrl"} {
		cfg[k] = value
	}
	return cfg
}

// ValidateProviderConfig returns a user-facing message describing what is
// missing from cfg, or "" when cfg is usable.
func ValidateProviderConfig(provider string, cfg map[string]any) string {
	switch {
	case provider == "":
		return "Extension provider not found"
	case provider == "gsheet-csv":
		if firstSet(cfg, "sharedLink", "url") == nil {
			return "Please provide a Google Sheets shared link"
		}
	case provider == "json-online":
		if firstSet(cfg, "jsonUrl", "url", "connectionUrl") == nil {
			return "Please provide a JSON file URL (jsonUrl, url, or connectionUrl)"
		}
	case provider == "parquet-online":
		if firstSet(cfg, "url", "connectionUrl") == nil {
			return "Please provide a Parquet file URL (url or connectionUrl)"
		}
	case provider == "s3":
		if !set(cfg["bucket"]) {
			return "Please provide an S3 bucket name"
		}
		if !set(cfg["region"]) {
			return "Please provide an S3 region"
		}
		if !set(cfg["aws_access_key_id"]) || !set(cfg["aws_secret_access_key"]) {
			return "Please provide access key ID and secret access key"
		}
		if f, _ := cfg["format"].(string); f != "parquet" && f != "json" {
			return "Please select file format (Parquet or JSON)"
		}
	case embedded(provider):
	default:
		if firstSet(cfg, "connectionUrl", "host") == nil {
			return "Please provide either a connection URL or connection details (host is required)"
		}
	}
	return ""
}

// NormalizeProviderConfig reduces cfg to the keys the provider's driver
// reads.
func NormalizeProviderConfig(provider string, cfg map[string]any) map[string]any {
	switch {
	case provider == "":
		return cfg
	case provider == "gsheet-csv":
		return map[string]any{"sharedLink": firstSet(cfg, "sharedLink", "url")}
	case provider == "json-online":
		return map[string]any{"jsonUrl": firstSet(cfg, "jsonUrl", "url", "connectionUrl")}
	case provider == "parquet-online":
		return map[string]any{"url": firstSet(cfg, "url", "connectionUrl")}
	case provider == "s3":
		out := map[string]any{
			"provider":              orDefault(cfg["provider"], "aws"),
			"aws_access_key_id":     cfg["aws_access_key_id"],
			"aws_secret_access_key": cfg["aws_secret_access_key"],
			"region":                cfg["region"],
			"endpoint_url":          cfg["endpoint_url"],
			"bucket":                cfg["bucket"],
			"prefix":                cfg["prefix"],
			"format":                orDefault(cfg["format"], "parquet"),
			"includes":              cfg["includes"],
			"excludes":              cfg["excludes"],
		}
		for k, v := range out {
			if blank(v) {
				delete(out, k)
			}
			if list, ok := v.([]any); ok && len(list) == 0 {
				delete(out, k)
			}
		}
		return out
	case embedded(provider):
		if set(cfg["database"]) {
			return map[string]any{"database": cfg["database"]}
		}
		return map[string]any{}
	}

	if set(cfg["connectionUrl"]) {
		return map[string]any{"connectionUrl": cfg["connectionUrl"]}
	}
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		if k == "connectionUrl" || (k != "password" && blank(v)) {
			continue
		}
		out[k] = v
	}
	return out
}

// set reports whether v holds a usable value: not nil, not empty, not
// false and not zero.
func set(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	}
	return true
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func firstSet(cfg map[string]any, keys ...string) any {
	for _, k := range keys {
		if set(cfg[k]) {
			return cfg[k]
		}
	}
	return nil
}

func orDefault(v any, def string) any {
	if v == nil {
		return def
	}
	return v
}

// NewDatasourceInput validates a connection string for typeID and builds
// the create request. The returned message is non-empty when the
// configuration is rejected.
func NewDatasourceInput(projectID, createdBy, typeID, name, connection string) (CreateDatasourceInput, string) {
	t, ok := LookupDatasourceType(typeID)
	if !ok {
		t = DatasourceType{ID: typeID, Driver: typeID + ".default", Kind: KindRemote}
	}
	raw := ConnectionToRawConfig(connection)
	if msg := ValidateProviderConfig(t.ID, raw); msg != "" {
		return CreateDatasourceInput{}, msg
	}
	if name = strings.TrimSpace(name); name == "" {
		name = t.ID
	}
	return CreateDatasourceInput{
		ProjectID: projectID,
		Name:      name,
		Provider:  t.ID,
		Driver:    t.Driver,
		Kind:      t.Kind,
		Config:    NormalizeProviderConfig(t.ID, raw),
		CreatedBy: createdBy,
	}, ""
}

// TestResult is the outcome of a connection test.
type TestResult struct {
	Success bool
	Message string
}

// TestConnection asks the server to open a connection with cfg. A failed
// test is reported in the result; the error is reserved for transport
// failures and ErrTestTimeout.
func (c *Client) TestConnection(ctx context.Context, provider, driverID string, cfg map[string]any) (TestResult, error) {
	ctx, cancel := context.WithTimeout(ctx, TestTimeout)
	defer cancel()

	body := map[string]any{
		"action":             "testConnection",
		"datasourceProvider": provider,
		"config":             cfg,
	}
	if driverID != "" {
		body["driverId"] = driverID
	}
	resp, err := c.do(ctx, http.MethodPost, "/driver/command", body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return TestResult{}, ErrTestTimeout
		}
		return TestResult{}, fmt.Errorf("test connection: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return TestResult{}, ErrTestTimeout
		}
		return TestResult{}, fmt.Errorf("test connection: read body: %w", err)
	}
	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Data    struct {
			Connected bool   `json:"connected"`
			Message   string `json:"message"`
		} `json:"data"`
	}
	decodeErr := json.Unmarshal(data, &out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return TestResult{Message: msg}, nil
	}
	if decodeErr != nil {
		return TestResult{}, invalidJSON(data)
	}
	if !out.Success {
		return TestResult{Message: out.Error}, nil
	}
	msg := out.Data.Message
	if msg == "" || msg == "ok" {
		msg = "Connection successful"
	}
	return TestResult{Success: true, Message: msg}, nil
}
