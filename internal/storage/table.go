package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/bytedance/sonic"
)

// tableEntity is the Azure Table row for one record. PartitionKey holds the
// namespace and RowKey the record id.
type tableEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	Title        string `json:"Title"`
	SortOrder    int    `json:"SortOrder"`
	Done         bool   `json:"Done"`
}

// TableAdapter stores records in an Azure Storage table.
type TableAdapter struct {
	client *aztables.Client
}

func NewTableAdapter(client *aztables.Client) (*TableAdapter, error) {
	if client == nil {
		return nil, errors.New("storage: nil table client")
	}
	return &TableAdapter{client: client}, nil
}

// OpenTable connects with a storage connection string and creates the table
// when it does not exist yet.
func OpenTable(ctx context.Context, connStr, table string) (*TableAdapter, error) {
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, nil)
	if err != nil {
		return nil, fmt.Errorf("table service: %w", err)
	}
	client := svc.NewClient(table)
	if _, err := client.CreateTable(ctx, nil); err != nil && !hasStatus(err, http.StatusConflict) {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}
	return NewTableAdapter(client)
}

func (a *TableAdapter) ReadAll(ctx context.Context, namespace string) ([]Record, error) {
	filter := partitionFilter(namespace)
	pager := a.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	out := make([]Record, 0)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			rec, decodeErr := recordFromEntity(raw)
			if decodeErr != nil {
				return nil, decodeErr
			}
			out = append(out, rec)
		}
	}
	sortRecords(out)
	return out, nil
}

func (a *TableAdapter) WriteOne(ctx context.Context, namespace, id string, rec Record) error {
	payload, err := entityFromRecord(namespace, id, rec)
	if err != nil {
		return err
	}
	_, err = a.client.UpsertEntity(ctx, payload, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	return err
}

func (a *TableAdapter) DeleteOne(ctx context.Context, namespace, id string) error {
	if _, err := a.client.DeleteEntity(ctx, namespace, id, nil); err != nil {
		if hasStatus(err, http.StatusNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func entityFromRecord(namespace, id string, rec Record) ([]byte, error) {
	return sonic.ConfigStd.Marshal(tableEntity{
		PartitionKey: namespace,
		RowKey:       id,
		Title:        rec.Title,
		SortOrder:    rec.Order,
		Done:         rec.Done,
	})
}

func recordFromEntity(raw []byte) (Record, error) {
	var ent tableEntity
	if err := sonic.ConfigStd.Unmarshal(raw, &ent); err != nil {
		return Record{}, fmt.Errorf("decode table entity: %w", err)
	}
	return Record{ID: ent.RowKey, Title: ent.Title, Order: ent.SortOrder, Done: ent.Done}, nil
}

func partitionFilter(namespace string) string {
	return fmt.Sprintf("PartitionKey eq '%s'", strings.ReplaceAll(namespace, "'", "''"))
}

func hasStatus(err error, status int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == status
}
