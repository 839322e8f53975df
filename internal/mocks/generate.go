// Package mocks provides mock implementations for testing the ingestion pipeline.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository interfaces in internal/core. Regenerate after interface
// changes with:
//
//	go generate ./internal/mocks
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_repository_mock.go github.com/practicejobs/ingest/internal/core JobRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=company_repository_mock.go github.com/practicejobs/ingest/internal/core CompanyRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=duplicate_log_repository_mock.go github.com/practicejobs/ingest/internal/core DuplicateLogRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=analytics_repository_mock.go github.com/practicejobs/ingest/internal/core AnalyticsRepository

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/practicejobs/ingest/internal/core CacheRepository
