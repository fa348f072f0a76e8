package dedup

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// QdrantIndex implements Index on a Qdrant collection, for corpora
// that must survive across runs.
type QdrantIndex struct {
	conn       *grpc.ClientConn
	points     pb.PointsClient
	collection string
}

// NewQdrant connects to a Qdrant instance. The collection must exist
// and use cosine distance, so that search scores are directly the
// similarities the decision policy needs.
func NewQdrant(_ context.Context, host string, port int, collection string) (*QdrantIndex, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &QdrantIndex{
		conn:       conn,
		points:     pb.NewPointsClient(conn),
		collection: collection,
	}, nil
}

func (q *QdrantIndex) Nearest(ctx context.Context, vec []float32) (float64, error) {
	resp, err := q.points.Search(ctx, &pb.SearchPoints{
		CollectionName: q.collection,
		Vector:         vec,
		Limit:          1,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant search: %w", err)
	}
	if len(resp.Result) == 0 {
		return 0, nil
	}
	return float64(resp.Result[0].Score), nil
}

func (q *QdrantIndex) Append(ctx context.Context, e Entry) error {
	point := &pb.PointStruct{
		Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: e.ID}},
		Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: e.Embedding}}},
		Payload: map[string]*pb.Value{
			"topic_id":    {Kind: &pb.Value_StringValue{StringValue: e.TopicID}},
			"accepted_at": {Kind: &pb.Value_StringValue{StringValue: e.AcceptedAt.UTC().Format("2006-01-02T15:04:05Z07:00")}},
		},
	}

	_, err := q.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: q.collection,
		Points:         []*pb.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

func (q *QdrantIndex) Len(ctx context.Context) (int, error) {
	exact := true
	resp, err := q.points.Count(ctx, &pb.CountPoints{
		CollectionName: q.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(resp.Result.Count), nil
}

func (q *QdrantIndex) Close() error {
	return q.conn.Close()
}
