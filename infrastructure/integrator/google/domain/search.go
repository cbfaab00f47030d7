package googledomain

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

// Campaign é o recurso campaign devolvido pelo GAQL
type Campaign struct {
	ResourceName string `json:"resourceName"`
	ID           string `json:"id"`
	Name         string `json:"name"`
}

// Metrics segue o JSON do proto3: int64 vêm como string, double como número
// e campos com valor zero são omitidos. decimal aceita as duas formas.
type Metrics struct {
	Impressions      decimal.Decimal     `json:"impressions"`
	Clicks           decimal.Decimal     `json:"clicks"`
	CostMicros       decimal.Decimal     `json:"costMicros"`
	Conversions      decimal.Decimal     `json:"conversions"`
	ConversionsValue decimal.Decimal     `json:"conversionsValue"`
	CTR              decimal.NullDecimal `json:"ctr"`
	AverageCPC       decimal.NullDecimal `json:"averageCpc"`
	AverageCPM       decimal.NullDecimal `json:"averageCpm"`
}

type Segments struct {
	Date string `json:"date"`
}

type SearchRow struct {
	Campaign Campaign `json:"campaign"`
	Metrics  Metrics  `json:"metrics"`
	Segments Segments `json:"segments"`
}

type SearchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

// SearchResponse é uma página de googleAds:search
type SearchResponse struct {
	Results       []SearchRow `json:"results"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
	FieldMask     string      `json:"fieldMask,omitempty"`
}

// ErrorResponse é o envelope google.rpc.Status dos erros REST
type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func EncodeSearch(req SearchRequest) ([]byte, error) {
	return json.Marshal(req)
}

func DecodeSearch(body []byte) (*SearchResponse, error) {
	var page SearchResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// DecodeError tenta extrair o erro estruturado; nil quando o corpo não é um erro
func DecodeError(body string) *ErrorResponse {
	var resp ErrorResponse
	if err := json.UnmarshalFromString(body, &resp); err != nil || resp.Error.Message == "" {
		return nil
	}
	return &resp
}
