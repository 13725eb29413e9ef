// Package gql exposes the todo service as a GraphQL schema.
package gql

import (
	"strings"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/Tomlord1122/todo-api/internal/domain"
	"github.com/Tomlord1122/todo-api/internal/service"
)

var sortOrderEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "SortOrder",
	Values: graphql.EnumValueConfigMap{
		"ASC":  &graphql.EnumValueConfig{Value: string(domain.Ascending)},
		"DESC": &graphql.EnumValueConfig{Value: string(domain.Descending)},
	},
})

var todoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Todo",
	Fields: graphql.Fields{
		"id":          todoField(graphql.NewNonNull(graphql.ID), func(t *domain.Todo) interface{} { return t.ID }),
		"description": todoField(graphql.NewNonNull(graphql.String), func(t *domain.Todo) interface{} { return t.Description }),
		"createdAt":   todoField(Date, func(t *domain.Todo) interface{} { return t.CreatedAt }),
		"completed":   todoField(graphql.Boolean, func(t *domain.Todo) interface{} { return t.Completed }),
		"priority":    todoField(graphql.Int, func(t *domain.Todo) interface{} { return t.Priority }),
	},
})

func todoField(typ graphql.Output, get func(*domain.Todo) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			todo, ok := p.Source.(*domain.Todo)
			if !ok || todo == nil {
				return nil, nil
			}
			return get(todo), nil
		},
	}
}

// NewSchema builds the query and mutation schema over svc.
func NewSchema(svc service.TodoService) (graphql.Schema, error) {
	r := &resolver{svc: svc}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"list": &graphql.Field{
				Type: graphql.NewList(todoType),
				Args: graphql.FieldConfigArgument{
					"sortBy":    &graphql.ArgumentConfig{Type: graphql.String},
					"order":     &graphql.ArgumentConfig{Type: sortOrderEnum},
					"completed": &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: r.list,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"create": &graphql.Field{
				Type: todoType,
				Args: graphql.FieldConfigArgument{
					"description": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"createdAt":   &graphql.ArgumentConfig{Type: Date},
					"completed":   &graphql.ArgumentConfig{Type: graphql.Boolean},
					"priority":    &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.create,
			},
			"delete": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.delete,
			},
			"update": &graphql.Field{
				Type: todoType,
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"description": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"priority":    &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.update,
			},
			"complete": &graphql.Field{
				Type: todoType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.complete,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

type resolver struct {
	svc service.TodoService
}

func (r *resolver) list(p graphql.ResolveParams) (interface{}, error) {
	req := service.ListTodosRequest{
		SortBy:    stringArg(p.Args, "sortBy"),
		Order:     stringArg(p.Args, "order"),
		Completed: boolArg(p.Args, "completed"),
	}
	todos, err := r.svc.ListTodos(p.Context, req)
	if err != nil {
		return nil, wrapError(err)
	}
	out := make([]*domain.Todo, len(todos))
	for i := range todos {
		out[i] = &todos[i]
	}
	return out, nil
}

func (r *resolver) create(p graphql.ResolveParams) (interface{}, error) {
	description := stringArg(p.Args, "description")
	req := service.CreateTodoRequest{
		Description: &description,
		Completed:   boolArg(p.Args, "completed"),
		Priority:    intArg(p.Args, "priority"),
	}
	if createdAt, ok := p.Args["createdAt"].(time.Time); ok {
		req.CreatedAt = &createdAt
	}
	todo, err := r.svc.CreateTodo(p.Context, req)
	if err != nil {
		return nil, wrapError(err)
	}
	return todo, nil
}

func (r *resolver) delete(p graphql.ResolveParams) (interface{}, error) {
	removed, err := r.svc.DeleteTodo(p.Context, stringArg(p.Args, "id"))
	if err != nil {
		return nil, wrapError(err)
	}
	return removed, nil
}

func (r *resolver) update(p graphql.ResolveParams) (interface{}, error) {
	description := stringArg(p.Args, "description")
	todo, err := r.svc.UpdateTodo(p.Context, stringArg(p.Args, "id"), service.UpdateTodoRequest{
		Description: &description,
		Priority:    intArg(p.Args, "priority"),
	})
	if err != nil {
		return nil, wrapError(err)
	}
	if todo == nil {
		return nil, nil
	}
	return todo, nil
}

func (r *resolver) complete(p graphql.ResolveParams) (interface{}, error) {
	todo, err := r.svc.CompleteTodo(p.Context, stringArg(p.Args, "id"))
	if err != nil {
		return nil, wrapError(err)
	}
	if todo == nil {
		return nil, nil
	}
	return todo, nil
}

func stringArg(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func boolArg(args map[string]interface{}, name string) *bool {
	if b, ok := args[name].(bool); ok {
		return &b
	}
	return nil
}

func intArg(args map[string]interface{}, name string) *int {
	if n, ok := args[name].(int); ok {
		return &n
	}
	return nil
}

// resolverError attaches the service error kind as extensions.code.
type resolverError struct {
	err error
}

func wrapError(err error) error {
	return &resolverError{err: err}
}

func (e *resolverError) Error() string { return e.err.Error() }

func (e *resolverError) Unwrap() error { return e.err }

func (e *resolverError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": errorCode(e.err)}
}

func errorCode(err error) string {
	return strings.ToUpper(string(service.KindOf(err)))
}
