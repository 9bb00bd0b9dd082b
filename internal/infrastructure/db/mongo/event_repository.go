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

	"github.com/gatherhub/event-management-api/internal/core/domain"
)

const eventsCollection = "events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	coll *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(eventsCollection)}
}

type mongoEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Date        time.Time          `bson:"date"`
	Time        string             `bson:"time"`
	Location    string             `bson:"location"`
	Category    string             `bson:"category"`
	ImageURL    string             `bson:"image_url,omitempty"`
	Organizer   string             `bson:"organizer"`
	Attendees   []string           `bson:"attendees"`
	Capacity    int                `bson:"capacity"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (me *mongoEvent) toDomain() *domain.Event {
	attendees := me.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return &domain.Event{
		ID:          me.ID.Hex(),
		Title:       me.Title,
		Description: me.Description,
		Date:        me.Date,
		Time:        me.Time,
		Location:    me.Location,
		Category:    me.Category,
		ImageURL:    me.ImageURL,
		Organizer:   me.Organizer,
		Attendees:   attendees,
		Capacity:    me.Capacity,
		Status:      domain.EventStatus(me.Status),
		CreatedAt:   me.CreatedAt,
		UpdatedAt:   me.UpdatedAt,
	}
}

// Create inserts a new event document.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoEvent{
		Title:       event.Title,
		Description: event.Description,
		Date:        event.Date,
		Time:        event.Time,
		Location:    event.Location,
		Category:    event.Category,
		ImageURL:    event.ImageURL,
		Organizer:   event.Organizer,
		Attendees:   event.Attendees,
		Capacity:    event.Capacity,
		Status:      string(event.Status),
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
	if doc.Attendees == nil {
		doc.Attendees = []string{}
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	created := *event
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrEventNotFound
	}

	var me mongoEvent
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&me); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return me.toDomain(), nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrEventNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// AddAttendee appends the user in a single conditional update. The filter
// re-checks event state, duplicate membership, and the capacity bound, so
// two concurrent joins on the last open slot cannot both land.
func (r *EventRepository) AddAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return false, domain.ErrEventNotFound
	}

	filter := bson.M{
		"_id":       oid,
		"status":    bson.M{"$ne": string(domain.StatusCompleted)},
		"attendees": bson.M{"$ne": userID},
		"$expr": bson.M{"$or": bson.A{
			bson.M{"$lte": bson.A{bson.M{"$ifNull": bson.A{"$capacity", 0}}, 0}},
			bson.M{"$lt": bson.A{bson.M{"$size": "$attendees"}, "$capacity"}},
		}},
	}
	update := bson.M{
		"$push": bson.M{"attendees": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("add attendee: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// RemoveAttendee pulls the user from the attendee list.
func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return false, domain.ErrEventNotFound
	}

	filter := bson.M{"_id": oid, "attendees": userID}
	update := bson.M{
		"$pull": bson.M{"attendees": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("remove attendee: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// ListForUser returns future events the user organizes or attends, ascending by date.
func (r *EventRepository) ListForUser(ctx context.Context, userID string, from time.Time) ([]*domain.Event, error) {
	filter := bson.M{
		"$or":  bson.A{bson.M{"organizer": userID}, bson.M{"attendees": userID}},
		"date": bson.M{"$gte": from},
	}
	return r.list(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
}

// ListPast returns events whose date has passed, in store order.
func (r *EventRepository) ListPast(ctx context.Context, before time.Time) ([]*domain.Event, error) {
	return r.list(ctx, bson.M{"date": bson.M{"$lt": before}}, options.Find())
}

// ListUpcoming returns events with status upcoming and a future date.
func (r *EventRepository) ListUpcoming(ctx context.Context, from time.Time) ([]*domain.Event, error) {
	filter := bson.M{
		"status": string(domain.StatusUpcoming),
		"date":   bson.M{"$gte": from},
	}
	return r.list(ctx, filter, options.Find())
}

func (r *EventRepository) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cur.Close(ctx)

	events := []*domain.Event{}
	for cur.Next(ctx) {
		var me mongoEvent
		if err := cur.Decode(&me); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, me.toDomain())
	}
	return events, cur.Err()
}

// EnsureIndexes creates the query indexes on the events collection.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "organizer", Value: 1}}},
		{Keys: bson.D{{Key: "attendees", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
