package domain

// Bucket is a grouped count returned by aggregation queries. Key is empty
// for the group of records missing the grouped field.
type Bucket struct {
	Key   string `json:"_id"`
	Count int64  `json:"count"`
}

// BucketMap converts a slice of buckets into a key to count map.
func BucketMap(buckets []Bucket) map[string]int64 {
	m := make(map[string]int64, len(buckets))
	for _, b := range buckets {
		m[b.Key] = b.Count
	}
	return m
}
