// Package mocks holds gomock mocks of the ports used by service and handler
// tests.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockRealtyAPI(ctrl)
//	api.EXPECT().Count(gomock.Any(), gomock.Any(), "api/properties").Return(12, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=realty_api_mock.go github.com/target/realty-admin/internal/ports RealtyAPI
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=outbox_mock.go github.com/target/realty-admin/internal/ports Outbox
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=mail_transport_mock.go github.com/target/realty-admin/internal/ports MailTransport
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/target/realty-admin/internal/ports CacheRepository
