// Package qdrant provides a DescriptionIndex implementation using Qdrant.
package qdrant

import (
	"context"
	"errors"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ersonp/dexgraph/internal/domain/entities"
	"github.com/ersonp/dexgraph/internal/infrastructure/config"
)

// Repository implements the DescriptionIndex interface using Qdrant.
// Each creature is one point keyed by its entity ID.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	apiKey     string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection is required")
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	r := newRepository(pb.NewCollectionsClient(conn), pb.NewPointsClient(conn), cfg.Collection)
	r.apiKey = cfg.APIKey
	r.conn = conn
	return r, nil
}

func newRepository(collections pb.CollectionsClient, points pb.PointsClient, collection string) *Repository {
	return &Repository{
		client:     collections,
		points:     points,
		collection: collection,
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// withAuth attaches the API key, if any, to outgoing calls.
func (r *Repository) withAuth(ctx context.Context) context.Context {
	if r.apiKey == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "api-key", r.apiKey)
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	ctx = r.withAuth(ctx)
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// Upsert stores or replaces a creature's description point.
func (r *Repository) Upsert(ctx context.Context, doc entities.DescriptionDocument) error {
	if doc.CreatureID == "" {
		return errors.New("description document has no creature id")
	}

	_, err := r.points.Upsert(r.withAuth(ctx), &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           &[]bool{true}[0],
		Points:         []*pb.PointStruct{docToPoint(doc)},
	})
	if err != nil {
		return fmt.Errorf("upserting point: %w", err)
	}

	return nil
}

// Search returns the creatures whose descriptions are nearest the embedding.
func (r *Repository) Search(ctx context.Context, embedding []float32, limit int) ([]entities.DescriptionHit, error) {
	resp, err := r.points.Search(r.withAuth(ctx), &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	return scoredPointsToHits(resp.Result), nil
}

// docToPoint converts a description document to a Qdrant point.
func docToPoint(doc entities.DescriptionDocument) *pb.PointStruct {
	return &pb.PointStruct{
		Id: &pb.PointId{
			PointIdOptions: &pb.PointId_Uuid{Uuid: doc.CreatureID},
		},
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: doc.Embedding},
			},
		},
		Payload: map[string]*pb.Value{
			"name":        {Kind: &pb.Value_StringValue{StringValue: doc.Name}},
			"dex_number":  {Kind: &pb.Value_IntegerValue{IntegerValue: doc.DexNumber}},
			"description": {Kind: &pb.Value_StringValue{StringValue: doc.Description}},
		},
	}
}

// scoredPointsToHits converts scored points to search hits.
func scoredPointsToHits(points []*pb.ScoredPoint) []entities.DescriptionHit {
	hits := make([]entities.DescriptionHit, 0, len(points))
	for _, point := range points {
		hits = append(hits, entities.DescriptionHit{
			Name:        getStringValue(point.Payload, "name"),
			DexNumber:   getIntValue(point.Payload, "dex_number"),
			Description: getStringValue(point.Payload, "description"),
			Score:       point.Score,
		})
	}
	return hits
}

// Helper functions for payload extraction.
func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func getIntValue(payload map[string]*pb.Value, key string) int64 {
	if v, ok := payload[key]; ok {
		return v.GetIntegerValue()
	}
	return 0
}
