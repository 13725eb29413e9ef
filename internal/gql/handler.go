package gql

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/Tomlord1122/todo-api/internal/logger"
)

const maxBodyBytes = 1 << 20

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves a schema over HTTP. POST accepts application/json or
// application/graphql bodies; GET reads query, operationName and variables
// from the URL.
type Handler struct {
	schema graphql.Schema
}

func NewHandler(schema graphql.Schema) *Handler {
	return &Handler{schema: schema}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(w, r)
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResult(err.Error()))
		return
	}
	if req.Query == "" {
		writeJSON(w, r, http.StatusBadRequest, errorResult("Must provide query string"))
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})
	if result.HasErrors() {
		logger.FromContext(r.Context()).Debug("GraphQL request returned errors",
			"operation", req.OperationName, "errors", len(result.Errors))
	}
	writeJSON(w, r, http.StatusOK, result)
}

type requestError string

func (e requestError) Error() string { return string(e) }

func parseRequest(w http.ResponseWriter, r *http.Request) (*Request, error) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req := &Request{
			Query:         q.Get("query"),
			OperationName: q.Get("operationName"),
		}
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return nil, requestError("variables must be a JSON object")
			}
		}
		return req, nil

	case http.MethodPost:
		body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "application/graphql" {
			raw, err := io.ReadAll(body)
			if err != nil {
				return nil, requestError("Error reading request body")
			}
			return &Request{Query: string(raw)}, nil
		}

		var req Request
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, requestError("Request body must not be empty")
			}
			return nil, requestError("Request body contains badly-formed JSON")
		}
		return &req, nil
	}
	return nil, requestError("GraphQL only supports GET and POST requests")
}

func errorResult(message string) *graphql.Result {
	return &graphql.Result{Errors: []gqlerrors.FormattedError{{Message: message}}}
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error marshaling GraphQL response", "error", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"errors":[{"message":"Internal server error preparing response"}]}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
