package queue_test

import (
	"net/http"

	"stockscan/internal/warehouse"
)

func newClient(baseURL string) *warehouse.Client {
	return warehouse.New(baseURL, "", http.DefaultClient)
}
