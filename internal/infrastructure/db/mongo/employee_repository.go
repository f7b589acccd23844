package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/worktrace/timesheet-system/internal/core/domain"
)

const collectionEmployees = "employees"

type EmployeeRepository struct {
	coll *mongo.Collection
}

func NewEmployeeRepository(db *mongo.Database) *EmployeeRepository {
	return &EmployeeRepository{coll: db.Collection(collectionEmployees)}
}

type mongoEmployee struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"employee_name"`
	CreatedByUserID string             `bson:"created_by_user_id"`
	Active          bool               `bson:"active"`
	CreatedAt       int64              `bson:"created_at"`
}

func (r *EmployeeRepository) Create(ctx context.Context, employee *domain.Employee) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoEmployee{
		Name:            employee.Name,
		CreatedByUserID: employee.CreatedByUserID,
		Active:          employee.Active,
		CreatedAt:       employee.CreatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert employee: %w", err)
	}

	created := *employee
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrEmployeeNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

func (r *EmployeeRepository) FindByNameAndEmployer(ctx context.Context, name, employerUserID string) (*domain.Employee, error) {
	// Newest entry wins when the denormalised (name, employer) pair is
	// not unique, mirroring the original lookup.
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	return r.findOne(ctx, bson.M{"employee_name": name, "created_by_user_id": employerUserID}, opts)
}

func (r *EmployeeRepository) ListActiveByEmployer(ctx context.Context, employerUserID string) ([]*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"created_by_user_id": employerUserID, "active": true}
	opts := options.Find().SetSort(bson.D{{Key: "employee_name", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer cursor.Close(ctx)

	var employees []*domain.Employee
	for cursor.Next(ctx) {
		var me mongoEmployee
		if err := cursor.Decode(&me); err != nil {
			return nil, fmt.Errorf("decode employee: %w", err)
		}
		employees = append(employees, me.toDomain())
	}
	return employees, cursor.Err()
}

func (r *EmployeeRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var me mongoEmployee
	var err error
	if opts != nil {
		err = r.coll.FindOne(ctx, filter, opts).Decode(&me)
	} else {
		err = r.coll.FindOne(ctx, filter).Decode(&me)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return me.toDomain(), nil
}

func (me *mongoEmployee) toDomain() *domain.Employee {
	return &domain.Employee{
		ID:              me.ID.Hex(),
		Name:            me.Name,
		CreatedByUserID: me.CreatedByUserID,
		Active:          me.Active,
		CreatedAt:       unixToTime(me.CreatedAt),
	}
}
