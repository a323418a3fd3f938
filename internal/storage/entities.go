package storage

import (
	"sort"

	"github.com/bytedance/sonic"
)

type Record struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
	Done  bool   `json:"done"`
}

func encodeRecord(rec Record) ([]byte, error) {
	return sonic.ConfigStd.Marshal(rec)
}

func decodeRecord(raw []byte) (Record, error) {
	var rec Record
	if err := sonic.ConfigStd.Unmarshal(raw, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func sortRecords(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Order == recs[j].Order {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].Order < recs[j].Order
	})
}
