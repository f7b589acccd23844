package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/worktrace/timesheet-system/internal/core/domain"
)

const collectionRecords = "timesheet_records"

type TimesheetRepository struct {
	coll *mongo.Collection
}

func NewTimesheetRepository(db *mongo.Database) *TimesheetRepository {
	return &TimesheetRepository{coll: db.Collection(collectionRecords)}
}

type mongoRecord struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID      string             `bson:"employee_id"`
	CreatedByUserID string             `bson:"created_by_user_id"`
	ClockInAt       int64              `bson:"clock_in_at"`
	ClockOutAt      *int64             `bson:"clock_out_at,omitempty"`
	HoursHundredths *int64             `bson:"hours_hundredths,omitempty"`
	Status          string             `bson:"status"`
	CreatedAt       int64              `bson:"created_at"`
	UpdatedAt       int64              `bson:"updated_at"`
}

func (r *TimesheetRepository) Create(ctx context.Context, record *domain.TimesheetRecord) (*domain.TimesheetRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoRecord{
		EmployeeID:      record.EmployeeID,
		CreatedByUserID: record.CreatedByUserID,
		ClockInAt:       record.ClockInAt.Unix(),
		Status:          string(record.Status),
		CreatedAt:       record.CreatedAt.Unix(),
		UpdatedAt:       record.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	created := *record
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *TimesheetRepository) FindOpenByEmployee(ctx context.Context, employeeID string) (*domain.TimesheetRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"employee_id": employeeID, "status": string(domain.StatusClockedIn)}
	opts := options.FindOne().SetSort(bson.D{{Key: "clock_in_at", Value: -1}})

	var mr mongoRecord
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoActiveClockIn
		}
		return nil, fmt.Errorf("find open record: %w", err)
	}
	return mr.toDomain(), nil
}

func (r *TimesheetRepository) Close(ctx context.Context, recordID string, clockOutAt time.Time, hours domain.Hours) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		return domain.ErrNoActiveClockIn
	}

	// Filter on status as well: a record closed by a concurrent call
	// must not be closed twice.
	filter := bson.M{"_id": oid, "status": string(domain.StatusClockedIn)}
	update := bson.M{"$set": bson.M{
		"clock_out_at":     clockOutAt.Unix(),
		"hours_hundredths": int64(hours),
		"status":           string(domain.StatusClockedOut),
		"updated_at":       clockOutAt.Unix(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("close record: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNoActiveClockIn
	}
	return nil
}

func (r *TimesheetRepository) ListByEmployer(ctx context.Context, employerUserID string) ([]*domain.TimesheetRecord, error) {
	return r.list(ctx, bson.M{"created_by_user_id": employerUserID})
}

func (r *TimesheetRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*domain.TimesheetRecord, error) {
	return r.list(ctx, bson.M{"employee_id": employeeID})
}

func (r *TimesheetRepository) list(ctx context.Context, filter bson.M) ([]*domain.TimesheetRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "clock_in_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*domain.TimesheetRecord
	for cursor.Next(ctx) {
		var mr mongoRecord
		if err := cursor.Decode(&mr); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = append(records, mr.toDomain())
	}
	return records, cursor.Err()
}

func (mr *mongoRecord) toDomain() *domain.TimesheetRecord {
	rec := &domain.TimesheetRecord{
		ID:              mr.ID.Hex(),
		EmployeeID:      mr.EmployeeID,
		CreatedByUserID: mr.CreatedByUserID,
		ClockInAt:       unixToTime(mr.ClockInAt),
		Status:          domain.ClockStatus(mr.Status),
		CreatedAt:       unixToTime(mr.CreatedAt),
		UpdatedAt:       unixToTime(mr.UpdatedAt),
	}
	if mr.ClockOutAt != nil {
		t := unixToTime(*mr.ClockOutAt)
		rec.ClockOutAt = &t
	}
	if mr.HoursHundredths != nil {
		h := domain.Hours(*mr.HoursHundredths)
		rec.HoursWorked = &h
	}
	return rec
}
