package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rabucejojr/digial-logbook/internal/core/domain"
	"github.com/rabucejojr/digial-logbook/internal/core/ports"
)

const clientsCollection = "clients"

var clientSearchFields = []string{"clientName", "projectName", "description", "contactPerson", "location"}

type ClientRepository struct {
	coll *mongo.Collection
}

func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{coll: db.Collection(clientsCollection)}
}

type mongoClient struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	ClientName    string              `bson:"clientName"`
	ProjectName   string              `bson:"projectName,omitempty"`
	Description   string              `bson:"description,omitempty"`
	ContactPerson string              `bson:"contactPerson,omitempty"`
	ContactEmail  string              `bson:"contactEmail,omitempty"`
	ContactPhone  string              `bson:"contactPhone,omitempty"`
	Location      string              `bson:"location,omitempty"`
	Agency        string              `bson:"agency"`
	Status        string              `bson:"status"`
	Priority      string              `bson:"priority"`
	Category      string              `bson:"category,omitempty"`
	Tags          []string            `bson:"tags"`
	StartDate     *time.Time          `bson:"startDate,omitempty"`
	EndDate       *time.Time          `bson:"endDate,omitempty"`
	Budget        *float64            `bson:"budget,omitempty"`
	Currency      string              `bson:"currency"`
	AssignedTo    *primitive.ObjectID `bson:"assignedTo,omitempty"`
	Notes         string              `bson:"notes,omitempty"`
	Attachments   []string            `bson:"attachments"`
	IsActive      bool                `bson:"isActive"`

	LastContactDate  *time.Time `bson:"lastContactDate,omitempty"`
	NextFollowUpDate *time.Time `bson:"nextFollowUpDate,omitempty"`
	Source           string     `bson:"source,omitempty"`
	ReferralBy       string     `bson:"referralBy,omitempty"`

	CustomFields primitive.M `bson:"customFields,omitempty"`

	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func toMongoClient(c *domain.Client) mongoClient {
	doc := mongoClient{
		ClientName:       c.ClientName,
		ProjectName:      c.ProjectName,
		Description:      c.Description,
		ContactPerson:    c.ContactPerson,
		ContactEmail:     c.ContactEmail,
		ContactPhone:     c.ContactPhone,
		Location:         c.Location,
		Agency:           string(c.Agency),
		Status:           string(c.Status),
		Priority:         string(c.Priority),
		Category:         c.Category,
		Tags:             c.Tags,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		Budget:           c.Budget,
		Currency:         c.Currency,
		Notes:            c.Notes,
		Attachments:      c.Attachments,
		IsActive:         c.IsActive,
		LastContactDate:  c.LastContactDate,
		NextFollowUpDate: c.NextFollowUpDate,
		Source:           c.Source,
		ReferralBy:       c.ReferralBy,
		CustomFields:     c.CustomFields,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if oid, err := objectID(c.AssignedTo); err == nil {
		doc.AssignedTo = &oid
	}
	return doc
}

func (m mongoClient) toDomain() *domain.Client {
	c := &domain.Client{
		ID:               m.ID.Hex(),
		ClientName:       m.ClientName,
		ProjectName:      m.ProjectName,
		Description:      m.Description,
		ContactPerson:    m.ContactPerson,
		ContactEmail:     m.ContactEmail,
		ContactPhone:     m.ContactPhone,
		Location:         m.Location,
		Agency:           domain.Agency(m.Agency),
		Status:           domain.ClientStatus(m.Status),
		Priority:         domain.Priority(m.Priority),
		Category:         m.Category,
		Tags:             m.Tags,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		Budget:           m.Budget,
		Currency:         m.Currency,
		Notes:            m.Notes,
		Attachments:      m.Attachments,
		IsActive:         m.IsActive,
		LastContactDate:  m.LastContactDate,
		NextFollowUpDate: m.NextFollowUpDate,
		Source:           m.Source,
		ReferralBy:       m.ReferralBy,
		CustomFields:     m.CustomFields,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.AssignedTo != nil {
		c.AssignedTo = m.AssignedTo.Hex()
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Attachments == nil {
		c.Attachments = []string{}
	}
	return c
}

// rangeCond accumulates comparison operators on a single field.
func rangeCond(filter bson.M, field, op string, v any) {
	cond, ok := filter[field].(bson.M)
	if !ok {
		cond = bson.M{}
		filter[field] = cond
	}
	cond[op] = v
}

func statusStrings(in []domain.ClientStatus) bson.A {
	out := make(bson.A, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

// clientFilter translates a ClientFilter into a query restricted to active records.
func clientFilter(f ports.ClientFilter) bson.M {
	filter := bson.M{"isActive": true}

	if len(f.Statuses) > 0 {
		rangeCond(filter, "status", "$in", statusStrings(f.Statuses))
	}
	if len(f.ExcludeStatuses) > 0 {
		rangeCond(filter, "status", "$nin", statusStrings(f.ExcludeStatuses))
	}
	if f.Priority != "" {
		filter["priority"] = string(f.Priority)
	}
	if f.Agency != "" {
		filter["agency"] = string(f.Agency)
	}
	switch {
	case f.Unassigned:
		filter["assignedTo"] = nil
	case f.AssignedTo != "":
		if oid, err := objectID(f.AssignedTo); err == nil {
			filter["assignedTo"] = oid
		} else {
			// assignedTo is stored as an ObjectID, so a raw string matches nothing.
			filter["assignedTo"] = f.AssignedTo
		}
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		filter["$or"] = orAny(clientSearchFields, containsRegex(s))
	}

	if f.StartFrom != nil {
		rangeCond(filter, "startDate", "$gte", *f.StartFrom)
	}
	if f.StartTo != nil {
		rangeCond(filter, "startDate", "$lte", *f.StartTo)
	}
	if f.EndFrom != nil {
		rangeCond(filter, "endDate", "$gte", *f.EndFrom)
	}
	if f.EndTo != nil {
		rangeCond(filter, "endDate", "$lte", *f.EndTo)
	}
	if f.EndBefore != nil {
		rangeCond(filter, "endDate", "$lt", *f.EndBefore)
	}
	if f.HasDates {
		rangeCond(filter, "startDate", "$ne", nil)
		rangeCond(filter, "endDate", "$ne", nil)
	}
	if f.CreatedFrom != nil {
		rangeCond(filter, "createdAt", "$gte", *f.CreatedFrom)
	}
	if f.UpdatedFrom != nil {
		rangeCond(filter, "updatedAt", "$gte", *f.UpdatedFrom)
	}
	return filter
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, toMongoClient(client))
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}

	created := *client
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoClient
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return mc.toDomain(), nil
}

func clientUpdateDoc(u ports.ClientUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	unset := bson.M{}
	str := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	tm := func(key string, v *time.Time) {
		if v != nil {
			set[key] = *v
		}
	}

	str("clientName", u.ClientName)
	str("projectName", u.ProjectName)
	str("description", u.Description)
	str("contactPerson", u.ContactPerson)
	str("contactPhone", u.ContactPhone)
	str("location", u.Location)
	str("category", u.Category)
	str("notes", u.Notes)
	str("source", u.Source)
	str("referralBy", u.ReferralBy)
	if u.ContactEmail != nil {
		set["contactEmail"] = strings.ToLower(*u.ContactEmail)
	}
	if u.Currency != nil {
		set["currency"] = strings.ToUpper(*u.Currency)
	}
	if u.Agency != nil {
		set["agency"] = string(*u.Agency)
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
	}
	if u.Priority != nil {
		set["priority"] = string(*u.Priority)
	}
	if u.Tags != nil {
		set["tags"] = u.Tags
	}
	if u.Attachments != nil {
		set["attachments"] = u.Attachments
	}
	if u.CustomFields != nil {
		set["customFields"] = u.CustomFields
	}
	if u.Budget != nil {
		set["budget"] = *u.Budget
	}
	tm("startDate", u.StartDate)
	tm("endDate", u.EndDate)
	tm("lastContactDate", u.LastContactDate)
	tm("nextFollowUpDate", u.NextFollowUpDate)

	if u.AssignedTo != nil {
		if oid, err := objectID(*u.AssignedTo); err == nil {
			set["assignedTo"] = oid
		} else {
			unset["assignedTo"] = ""
		}
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}

func (r *ClientRepository) Update(ctx context.Context, id string, update ports.ClientUpdate) (*domain.Client, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, domain.ErrClientNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mc mongoClient
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, clientUpdateDoc(update, time.Now().UTC()), opts).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("update client: %w", err)
	}
	return mc.toDomain(), nil
}

// Deactivate soft-deletes the client; the document is never removed.
func (r *ClientRepository) Deactivate(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return domain.ErrClientNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"isActive":  false,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("deactivate client: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func sortDoc(s ports.ClientSort) bson.D {
	switch s {
	case ports.SortEndDateAsc:
		return bson.D{{Key: "endDate", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	}
}

func (r *ClientRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Client, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", err)
	}
	var docs []mongoClient
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	out := make([]*domain.Client, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *ClientRepository) List(ctx context.Context, f ports.ClientFilter, page, limit int) ([]*domain.Client, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := clientFilter(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	opts := options.Find().
		SetSort(sortDoc(ports.SortNewest)).
		SetSkip(skipFor(page, limit)).
		SetLimit(int64(limit))
	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ClientRepository) Find(ctx context.Context, f ports.ClientFilter, sort ports.ClientSort, limit int) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(sortDoc(sort))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, clientFilter(f), opts)
}

func (r *ClientRepository) Count(ctx context.Context, f ports.ClientFilter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, clientFilter(f))
	if err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return n, nil
}

func (r *ClientRepository) CountBy(ctx context.Context, f ports.ClientFilter, field ports.GroupField, limit int) ([]domain.Bucket, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs, err := groupCount(ctx, r.coll, clientFilter(f), string(field), limit)
	if err != nil {
		return nil, fmt.Errorf("group clients by %s: %w", field, err)
	}
	return toBuckets(docs), nil
}

type monthDoc struct {
	ID struct {
		Year  int `bson:"year"`
		Month int `bson:"month"`
	} `bson:"_id"`
	Count int64 `bson:"count"`
}

// MonthlyCounts buckets matching records by the UTC calendar month of field,
// starting at from.
func (r *ClientRepository) MonthlyCounts(ctx context.Context, f ports.ClientFilter, field ports.DateField, from time.Time) ([]ports.MonthCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	match := clientFilter(f)
	rangeCond(match, string(field), "$gte", from)

	ref := "$" + string(field)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year", Value: bson.D{{Key: "$year", Value: ref}}},
				{Key: "month", Value: bson.D{{Key: "$month", Value: ref}}},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("monthly counts: %w", err)
	}
	var docs []monthDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode monthly counts: %w", err)
	}

	out := make([]ports.MonthCount, 0, len(docs))
	for _, d := range docs {
		out = append(out, ports.MonthCount{Year: d.ID.Year, Month: time.Month(d.ID.Month), Count: d.Count})
	}
	return out, nil
}

func (r *ClientRepository) AverageDurationDays(ctx context.Context, f ports.ClientFilter) (float64, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	f.HasDates = true
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: clientFilter(f)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgDuration", Value: bson.D{{Key: "$avg", Value: bson.D{
				{Key: "$divide", Value: bson.A{
					bson.D{{Key: "$subtract", Value: bson.A{"$endDate", "$startDate"}}},
					86400000,
				}},
			}}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, false, fmt.Errorf("average duration: %w", err)
	}
	var docs []struct {
		AvgDuration float64 `bson:"avgDuration"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return 0, false, fmt.Errorf("decode average duration: %w", err)
	}
	if len(docs) == 0 {
		return 0, false, nil
	}
	return docs[0].AvgDuration, true, nil
}

func (r *ClientRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	keys := []string{"clientName", "status", "priority", "agency", "assignedTo", "startDate", "endDate", "isActive"}
	indexes := make([]mongo.IndexModel, 0, len(keys)+1)
	for _, k := range keys {
		indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: k, Value: 1}}})
	}
	indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}})

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
