package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Tomlord1122/todo-api/internal/domain"
)

// todoDocument is the stored shape of a todo in the collection.
type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"createdAt"`
	Completed   bool               `bson:"completed"`
	Priority    int                `bson:"priority"`
}

func (d *todoDocument) toDomain() domain.Todo {
	return domain.Todo{
		ID:          d.ID.Hex(),
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		Completed:   d.Completed,
		Priority:    d.Priority,
	}
}

// mongoTodoRepository implements TodoRepository on a MongoDB collection
type mongoTodoRepository struct {
	coll *mongo.Collection
}

// NewMongoTodoRepository creates a todo repository backed by the given collection
func NewMongoTodoRepository(coll *mongo.Collection) TodoRepository {
	return &mongoTodoRepository{coll: coll}
}

func (r *mongoTodoRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Todo, error) {
	query := bson.M{}
	if filter.Completed != nil {
		query["completed"] = *filter.Completed
	}

	opts := options.Find()
	if filter.Sort != nil {
		dir := 1
		if filter.Sort.Order == domain.Descending {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: string(filter.Sort.Field), Value: dir}})
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []todoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	todos := make([]domain.Todo, 0, len(docs))
	for i := range docs {
		todos = append(todos, docs[i].toDomain())
	}
	return todos, nil
}

func (r *mongoTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	doc := todoDocument{
		Description: todo.Description,
		CreatedAt:   todo.CreatedAt,
		Completed:   todo.Completed,
		Priority:    todo.Priority,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		todo.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTodoRepository) FindByIDAndUpdate(ctx context.Context, id string, patch domain.TodoPatch) (*domain.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	set := bson.M{}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	var doc todoDocument
	filter := bson.M{"_id": oid}
	if len(set) == 0 {
		// $set with no fields is rejected by the server; read the record as is.
		err = r.coll.FindOne(ctx, filter).Decode(&doc)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	todo := doc.toDomain()
	return &todo, nil
}

func (r *mongoTodoRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrInvalidID
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}
