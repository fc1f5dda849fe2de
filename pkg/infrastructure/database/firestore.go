package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	shared "github.com/fitglue/musclemap/pkg"
	"github.com/fitglue/musclemap/pkg/domain/knowledge"
	"github.com/fitglue/musclemap/pkg/domain/muscle"
)

// mappingDoc is the Firestore representation of one learned mapping.
type mappingDoc struct {
	Primary   []string `firestore:"primary"`
	Secondary []string `firestore:"secondary"`
}

// tableDoc is the single document holding the whole knowledge base.
type tableDoc struct {
	Mappings  map[string]mappingDoc `firestore:"mappings"`
	Count     int                   `firestore:"count"`
	UpdatedAt time.Time             `firestore:"updatedAt,serverTimestamp"`
}

// KnowledgeStore keeps the exercise knowledge base in one Firestore document,
// knowledge_base/exercise_mappings by default.
type KnowledgeStore struct {
	Client     *firestore.Client
	Collection string
	Document   string
}

// NewKnowledgeStore returns a store on the default document.
func NewKnowledgeStore(client *firestore.Client) *KnowledgeStore {
	return &KnowledgeStore{
		Client:     client,
		Collection: shared.CollectionKnowledgeBase,
		Document:   shared.DocExerciseMappings,
	}
}

func (s *KnowledgeStore) doc() *firestore.DocumentRef {
	return s.Client.Collection(s.Collection).Doc(s.Document)
}

// Load reads the table. A missing document is an empty table.
func (s *KnowledgeStore) Load(ctx context.Context) (knowledge.Table, error) {
	snap, err := s.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return knowledge.Table{}, nil
		}
		return nil, fmt.Errorf("get %s/%s: %w", s.Collection, s.Document, err)
	}

	var d tableDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", s.Collection, s.Document, err)
	}
	return fromDoc(d), nil
}

// Save replaces the document with t.
func (s *KnowledgeStore) Save(ctx context.Context, t knowledge.Table) error {
	if _, err := s.doc().Set(ctx, toDoc(t)); err != nil {
		return fmt.Errorf("set %s/%s: %w", s.Collection, s.Document, err)
	}
	return nil
}

func toDoc(t knowledge.Table) tableDoc {
	d := tableDoc{Mappings: make(map[string]mappingDoc, len(t)), Count: len(t)}
	for id, m := range t {
		d.Mappings[id] = mappingDoc{
			Primary:   groupStrings(m.Primary),
			Secondary: groupStrings(m.Secondary),
		}
	}
	return d
}

// fromDoc keeps group names as stored; the knowledge base validates them on load.
func fromDoc(d tableDoc) knowledge.Table {
	t := make(knowledge.Table, len(d.Mappings))
	for id, m := range d.Mappings {
		t[id] = knowledge.Mapping{
			Primary:   stringGroups(m.Primary),
			Secondary: stringGroups(m.Secondary),
		}
	}
	return t
}

func groupStrings(groups []muscle.Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = string(g)
	}
	return out
}

func stringGroups(names []string) []muscle.Group {
	out := make([]muscle.Group, len(names))
	for i, n := range names {
		out[i] = muscle.Group(n)
	}
	return out
}

// SortedIDs lists the exercise ids of t in lexical order.
func SortedIDs(t knowledge.Table) []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
