package model

type EmbeddingCacheItem struct {
	ModelName   string    `json:"model_name"`
	Modality    string    `json:"modality"`
	ContentHash string    `json:"content_hash"`
	Embedding   []float32 `json:"embedding"`
	Ctime       int64     `json:"ctime"`
}
