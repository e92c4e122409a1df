package server

//go:generate swag init -g internal/server/server.go -o internal/server/docs --outputTypes go

// @title PhishGuard API
// @version 0.1
// @description Two-stage phishing URL classification: a heuristic pre-filter followed by a trained model.
// @contact.name PhishGuard Maintainers
// @contact.url https://github.com/raysh454/phishguard
// @BasePath /
