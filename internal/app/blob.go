package app

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hylla/tavla/internal/domain"
)

// DefaultStorageKey is the key the board blob is stored under.
const DefaultStorageKey = "kanbanBoard"

// BoardBlob is the persisted board document.
type BoardBlob struct {
	Tasks   map[string]BlobTask `json:"tasks" yaml:"tasks"`
	Columns []BlobColumn        `json:"columns" yaml:"columns"`
}

// BlobTask is one task entry keyed by task id.
type BlobTask struct {
	Text   string `json:"text" yaml:"text"`
	Column string `json:"column" yaml:"column"`
}

// BlobColumn lists a column and the ordered ids of its tasks.
type BlobColumn struct {
	ID    string   `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Tasks []string `json:"tasks" yaml:"tasks"`
}

// BlobFromColumns builds the persisted document from board columns.
func BlobFromColumns(columns []domain.Column) BoardBlob {
	blob := BoardBlob{
		Tasks:   map[string]BlobTask{},
		Columns: make([]BlobColumn, 0, len(columns)),
	}
	for _, column := range columns {
		ids := make([]string, 0, len(column.Tasks))
		for _, task := range column.Tasks {
			blob.Tasks[task.ID] = BlobTask{Text: task.Text, Column: column.ID}
			ids = append(ids, task.ID)
		}
		blob.Columns = append(blob.Columns, BlobColumn{ID: column.ID, Name: column.Name, Tasks: ids})
	}
	return blob
}

// ToColumns rebuilds board columns. Column listings are authoritative; task
// entries no column lists are ignored.
func (b BoardBlob) ToColumns() ([]domain.Column, error) {
	columns := make([]domain.Column, 0, len(b.Columns))
	for _, bc := range b.Columns {
		column := domain.Column{ID: bc.ID, Name: bc.Name, Tasks: make([]domain.Task, 0, len(bc.Tasks))}
		for _, taskID := range bc.Tasks {
			entry, ok := b.Tasks[taskID]
			if !ok {
				return nil, fmt.Errorf("%w: column %q lists unknown task %q", domain.ErrMalformedBoard, bc.ID, taskID)
			}
			column.Tasks = append(column.Tasks, domain.Task{ID: taskID, Text: entry.Text})
		}
		columns = append(columns, column)
	}
	return columns, nil
}

// EncodeBlob serializes board columns to the persisted JSON document.
func EncodeBlob(columns []domain.Column) ([]byte, error) {
	data, err := json.Marshal(BlobFromColumns(columns))
	if err != nil {
		return nil, fmt.Errorf("encode board blob: %w", err)
	}
	return data, nil
}

// DecodeBlob parses a persisted JSON document.
func DecodeBlob(data []byte) (BoardBlob, error) {
	var blob BoardBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return BoardBlob{}, fmt.Errorf("%w: %v", domain.ErrMalformedBoard, err)
	}
	return blob, nil
}

// IsNullBlob reports whether data is the JSON literal null. A stored null
// document is treated as no board at all.
func IsNullBlob(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
