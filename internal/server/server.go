package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Tomlord1122/todo-api/internal/database"
	"github.com/Tomlord1122/todo-api/internal/gql"
	"github.com/Tomlord1122/todo-api/internal/service"
)

type Server struct {
	port        int
	todoService service.TodoService
	db          database.Service
	graphql     http.Handler
	log         *slog.Logger
}

func newServer(port int, todoService service.TodoService, dbService database.Service, log *slog.Logger) (*Server, error) {
	schema, err := gql.NewSchema(todoService)
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}
	return &Server{
		port:        port,
		todoService: todoService,
		db:          dbService,
		graphql:     gql.NewHandler(schema),
		log:         log,
	}, nil
}

// NewServer wires the routes for todoService and dbService into an http.Server
// listening on port.
func NewServer(port int, todoService service.TodoService, dbService database.Service, log *slog.Logger) (*http.Server, error) {
	appServer, err := newServer(port, todoService, dbService, log)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(log.Handler(), slog.LevelError),
	}

	return server, nil
}
