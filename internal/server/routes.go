package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/logger"
	"github.com/Tomlord1122/todo-api/internal/service"
)

// TodoResponse is the REST representation of a todo. CreatedAt is epoch
// milliseconds, the same encoding the GraphQL Date scalar uses.
type TodoResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"createdAt"`
	Completed   bool   `json:"completed"`
	Priority    int    `json:"priority"`
}

type createTodoBody struct {
	Description *string `json:"description"`
	CreatedAt   *int64  `json:"createdAt"`
	Completed   *bool   `json:"completed"`
	Priority    *int    `json:"priority"`
}

type updateTodoBody struct {
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
}

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", s.HelloWorldHandler)

	r.Get("/health", s.healthHandler)

	r.Handle("/graphql", s.graphql)

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", s.listTodosHandler)
		r.Post("/", s.createTodoHandler)
		r.Put("/{id}", s.updateTodoHandler)
		r.Patch("/{id}/complete", s.completeTodoHandler)
		r.Delete("/{id}", s.deleteTodoHandler)
	})

	return r
}

func (s *Server) HelloWorldHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, r, http.StatusOK, map[string]string{"message": "Hello World from Todo API!"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health(r.Context())
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, r, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, r, http.StatusOK, healthStats)
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.ListTodosRequest{
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
	}
	if raw := q.Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid completed filter %q", raw))
			return
		}
		req.Completed = &completed
	}

	todos, err := s.todoService.ListTodos(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	responses := make([]TodoResponse, 0, len(todos))
	for i := range todos {
		responses = append(responses, toTodoResponse(&todos[i]))
	}
	respondWithJSON(w, r, http.StatusOK, responses)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	var body createTodoBody
	if !decodeJSONBody(w, r, &body) {
		return
	}

	req := service.CreateTodoRequest{
		Description: body.Description,
		Completed:   body.Completed,
		Priority:    body.Priority,
	}
	if body.CreatedAt != nil {
		createdAt := time.UnixMilli(*body.CreatedAt).UTC()
		req.CreatedAt = &createdAt
	}

	todo, err := s.todoService.CreateTodo(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, r, http.StatusCreated, toTodoResponse(todo))
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body updateTodoBody
	if !decodeJSONBody(w, r, &body) {
		return
	}

	todo, err := s.todoService.UpdateTodo(r.Context(), id, service.UpdateTodoRequest{
		Description: body.Description,
		Priority:    body.Priority,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if todo == nil {
		respondWithNotFound(w, r, "update todo", id)
		return
	}

	respondWithJSON(w, r, http.StatusOK, toTodoResponse(todo))
}

func (s *Server) completeTodoHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	todo, err := s.todoService.CompleteTodo(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if todo == nil {
		respondWithNotFound(w, r, "complete todo", id)
		return
	}

	respondWithJSON(w, r, http.StatusOK, toTodoResponse(todo))
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	removed, err := s.todoService.DeleteTodo(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if !removed {
		respondWithNotFound(w, r, "delete todo", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toTodoResponse(todo *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Description: todo.Description,
		CreatedAt:   todo.CreatedAt.UnixMilli(),
		Completed:   todo.Completed,
		Priority:    todo.Priority,
	}
}

// decodeJSONBody decodes the request body into dst, writing a 400 response
// and returning false when the body is unusable.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
		respondWithError(w, r, http.StatusBadRequest, msg)
	case errors.Is(err, io.ErrUnexpectedEOF):
		respondWithError(w, r, http.StatusBadRequest, "Request body contains badly-formed JSON")
	case errors.As(err, &unmarshalTypeError):
		msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
		respondWithError(w, r, http.StatusBadRequest, msg)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		respondWithError(w, r, http.StatusBadRequest, fmt.Sprintf("Request body contains unknown field %s", fieldName))
	case errors.Is(err, io.EOF):
		respondWithError(w, r, http.StatusBadRequest, "Request body must not be empty")
	default:
		logger.FromContext(r.Context()).Error("Error decoding request body", "error", err)
		respondWithError(w, r, http.StatusInternalServerError, "Error processing request")
	}
	return false
}

var kindStatus = map[service.Kind]int{
	service.KindValidation:  http.StatusBadRequest,
	service.KindNotFound:    http.StatusNotFound,
	service.KindUnavailable: http.StatusServiceUnavailable,
	service.KindUnknown:     http.StatusInternalServerError,
}

func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	code, ok := kindStatus[kind]
	if !ok {
		code = http.StatusInternalServerError
	}
	if code >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Todo operation failed", "kind", kind, "error", err)
	}
	respondWithJSON(w, r, code, map[string]string{"error": err.Error(), "code": string(kind)})
}

func respondWithNotFound(w http.ResponseWriter, r *http.Request, op, id string) {
	respondWithServiceError(w, r, &service.Error{
		Kind: service.KindNotFound,
		Op:   op,
		Err:  fmt.Errorf("%w: %s", service.ErrTodoNotFound, id),
	})
}

func respondWithError(w http.ResponseWriter, r *http.Request, code int, message string) {
	respondWithJSON(w, r, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error marshaling JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
