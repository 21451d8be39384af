package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name DailyCache --dir ../domain/fixture --output domain/fixture --outpkg fixturemock --filename daily_cache_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name MatchProvider --dir ../usecase --output usecase --outpkg usecasemock --filename match_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name MessageSender --dir ../usecase --output usecase --outpkg usecasemock --filename message_sender_mock.go
