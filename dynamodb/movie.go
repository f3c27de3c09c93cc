package dynamodb

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"moviecatalog/movie"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/samber/lo"
)

// movieSequence is the counters-table key holding the last assigned movie id.
const movieSequence = "movies"

// MovieRepository implements [movie.Repository] on two tables: movies keyed
// by numeric "id", and a counters table keyed by "name" used to hand out ids.
// Every mutation is a single conditional write, so it is atomic per call.
type MovieRepository struct {
	client   Client
	table    string
	counters string
}

type movieItem struct {
	ID          int64  `dynamodbav:"id"`
	Title       string `dynamodbav:"title"`
	Description string `dynamodbav:"description"`
	Director    string `dynamodbav:"director"`
	Country     string `dynamodbav:"country"`
}

func NewMovieRepository(client Client, table, counters string) *MovieRepository {
	return &MovieRepository{
		client:   client,
		table:    table,
		counters: counters,
	}
}

func (r *MovieRepository) ListAll(ctx context.Context) ([]movie.Movie, error) {
	items, err := r.scan(ctx, "", "")
	if err != nil {
		return nil, err
	}
	return toDomainMovies(items), nil
}

func (r *MovieRepository) FindByID(ctx context.Context, id int64) (movie.Lookup, error) {
	if err := validateTable(r.table); err != nil {
		return movie.Absent(), err
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &r.table,
		Key:            movieKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return movie.Absent(), fmt.Errorf("dynamodb: get movie: %w", err)
	}
	if len(out.Item) == 0 {
		return movie.Absent(), nil
	}

	var item movieItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return movie.Absent(), fmt.Errorf("dynamodb: unmarshal movie: %w", err)
	}
	return movie.Found(toDomainMovie(item)), nil
}

// FindByTitle returns the lowest id among exact title matches.
func (r *MovieRepository) FindByTitle(ctx context.Context, title string) (movie.Lookup, error) {
	items, err := r.scan(ctx, "title", title)
	if err != nil {
		return movie.Absent(), err
	}
	if len(items) == 0 {
		return movie.Absent(), nil
	}
	return movie.Found(toDomainMovie(items[0])), nil
}

func (r *MovieRepository) FindByCountry(ctx context.Context, country string) ([]movie.Movie, error) {
	items, err := r.scan(ctx, "country", country)
	if err != nil {
		return nil, err
	}
	return toDomainMovies(items), nil
}

func (r *MovieRepository) Persist(ctx context.Context, m *movie.Movie) error {
	if err := validateTable(r.table); err != nil {
		return err
	}

	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}

	item := toMovieItem(*m)
	item.ID = id
	av, err := attributevalue.MarshalMapWithOptions(item, keepEmptyStrings)
	if err != nil {
		return fmt.Errorf("dynamodb: marshal movie: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                &r.table,
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		return fmt.Errorf("dynamodb: put movie: %w", err)
	}

	m.Identity = movie.Saved(id)
	return nil
}

func (r *MovieRepository) IsPersistent(ctx context.Context, m movie.Movie) (bool, error) {
	id, ok := m.ID()
	if !ok {
		return false, nil
	}
	if err := validateTable(r.table); err != nil {
		return false, err
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                &r.table,
		Key:                      movieKey(id),
		ProjectionExpression:     aws.String("#id"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("dynamodb: check movie: %w", err)
	}
	return len(out.Item) > 0, nil
}

// Update sets every present patch field in one conditional UpdateItem call.
func (r *MovieRepository) Update(ctx context.Context, id int64, p movie.Patch) (movie.Lookup, error) {
	if p.IsEmpty() {
		return r.FindByID(ctx, id)
	}
	if err := validateTable(r.table); err != nil {
		return movie.Absent(), err
	}

	names := map[string]string{"#id": "id"}
	values := map[string]types.AttributeValue{}
	var sets []string
	set := func(attr string, v *string) {
		if v == nil {
			return
		}
		names["#"+attr] = attr
		values[":"+attr] = &types.AttributeValueMemberS{Value: *v}
		sets = append(sets, fmt.Sprintf("#%s = :%s", attr, attr))
	}
	set("title", p.Title)
	set("description", p.Description)
	set("director", p.Director)
	set("country", p.Country)

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &r.table,
		Key:                       movieKey(id),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return movie.Absent(), nil
		}
		return movie.Absent(), fmt.Errorf("dynamodb: update movie: %w", err)
	}

	var item movieItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return movie.Absent(), fmt.Errorf("dynamodb: unmarshal movie: %w", err)
	}
	return movie.Found(toDomainMovie(item)), nil
}

func (r *MovieRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	if err := validateTable(r.table); err != nil {
		return false, err
	}

	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    &r.table,
		Key:          movieKey(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, fmt.Errorf("dynamodb: delete movie: %w", err)
	}
	return len(out.Attributes) > 0, nil
}

// scan reads the whole movies table, keeping items whose attr equals value
// when attr is set, ordered by id.
func (r *MovieRepository) scan(ctx context.Context, attr, value string) ([]movieItem, error) {
	if err := validateTable(r.table); err != nil {
		return nil, err
	}

	input := &dynamodb.ScanInput{
		TableName:      &r.table,
		ConsistentRead: aws.Bool(true),
	}
	if attr != "" {
		input.FilterExpression = aws.String("#f = :v")
		input.ExpressionAttributeNames = map[string]string{"#f": attr}
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		}
	}

	items := []movieItem{}
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb: scan movies: %w", err)
		}

		var page []movieItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("dynamodb: unmarshal movies: %w", err)
		}
		items = append(items, page...)
	}

	slices.SortFunc(items, func(a, b movieItem) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (r *MovieRepository) nextID(ctx context.Context) (int64, error) {
	if err := validateTable(r.counters); err != nil {
		return 0, err
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &r.counters,
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: movieSequence},
		},
		UpdateExpression:          aws.String("ADD #seq :one"),
		ExpressionAttributeNames:  map[string]string{"#seq": "seq"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("dynamodb: allocate movie id: %w", err)
	}

	seq, ok := out.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("dynamodb: allocate movie id: missing sequence value")
	}
	id, err := strconv.ParseInt(seq.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("dynamodb: parse movie id: %w", err)
	}
	return id, nil
}

// keepEmptyStrings stores "" as S rather than NULL so that an empty country
// is still matched by an exact lookup.
func keepEmptyStrings(o *attributevalue.EncoderOptions) {
}

func movieKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}

func toDomainMovies(items []movieItem) []movie.Movie {
	return lo.Map(items, func(item movieItem, _ int) movie.Movie {
		return toDomainMovie(item)
	})
}

func toDomainMovie(item movieItem) movie.Movie {
	return movie.Movie{
		Identity:    movie.Saved(item.ID),
		Title:       item.Title,
		Description: item.Description,
		Director:    item.Director,
		Country:     item.Country,
	}
}

func toMovieItem(m movie.Movie) movieItem {
	id, _ := m.ID()
	return movieItem{
		ID:          id,
		Title:       m.Title,
		Description: m.Description,
		Director:    m.Director,
		Country:     m.Country,
	}
}
