// Package mocks provides mock implementations for testing the generation pipeline.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository and collaborator interfaces in internal/core. The mocks are
// generated from the source file so every interface stays covered as the
// contracts evolve.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockRepo := mocks.NewMockJobRepository(ctrl)
//	mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -source=../core/interfaces.go -destination=core_mocks.go -package=mocks
