package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/kawaiicounter/pkg/counter"
)

const mongoDocID = "counters"

// mongoDoc stores counters as an array since ids may contain '.' or '$'.
type mongoDoc struct {
	ID       string            `bson:"_id"`
	Version  int               `bson:"version"`
	Counters []counter.Counter `bson:"counters"`
	SavedAt  time.Time         `bson:"savedAt"`
}

// Mongo persists snapshots as a single document.
type Mongo struct {
	coll   *mongo.Collection
	client *mongo.Client
}

// NewMongo wraps an existing collection. The caller keeps ownership of the client.
func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

// DialMongo connects to uri and pings the primary.
// Close on the returned persister disconnects the client.
func DialMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Mongo{
		coll:   client.Database(database).Collection(collection),
		client: client,
	}, nil
}

func (m *Mongo) Load(ctx context.Context) (*counter.Snapshot, error) {
	var doc mongoDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": mongoDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, counter.ErrNoSnapshot
		}
		return nil, fmt.Errorf("mongo find snapshot: %w", err)
	}
	if doc.Version != counter.SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}

	snap := &counter.Snapshot{
		Version:  doc.Version,
		Counters: make(map[string]counter.Counter, len(doc.Counters)),
	}
	for _, c := range doc.Counters {
		snap.Counters[c.ID] = c
	}
	return snap, nil
}

func (m *Mongo) Save(ctx context.Context, snap *counter.Snapshot) error {
	doc := mongoDoc{
		ID:       mongoDocID,
		Version:  counter.SnapshotVersion,
		Counters: make([]counter.Counter, 0, len(snap.Counters)),
		SavedAt:  time.Now().UTC(),
	}
	for id, c := range snap.Counters {
		c.ID = id
		doc.Counters = append(doc.Counters, c)
	}

	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": mongoDocID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace snapshot: %w", err)
	}
	return nil
}

func (m *Mongo) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

var _ counter.Persister = (*Mongo)(nil)
