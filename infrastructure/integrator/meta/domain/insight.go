package metadomain

import (
	jsoniter "github.com/json-iterator/go"
)

// ActionValue é um item de actions, action_values ou purchase_roas.
// A Graph API devolve os valores numéricos como string.
type ActionValue struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// CampaignInsight é uma linha diária de insights no nível de campanha
type CampaignInsight struct {
	AccountID    string        `json:"account_id"`
	CampaignID   string        `json:"campaign_id"`
	CampaignName string        `json:"campaign_name"`
	DateStart    string        `json:"date_start"`
	DateStop     string        `json:"date_stop"`
	Impressions  string        `json:"impressions"`
	Reach        string        `json:"reach"`
	Clicks       string        `json:"clicks"`
	Spend        string        `json:"spend"`
	CPC          string        `json:"cpc"`
	CPM          string        `json:"cpm"`
	CTR          string        `json:"ctr"`
	Actions      []ActionValue `json:"actions"`
	ActionValues []ActionValue `json:"action_values"`
	PurchaseROAS []ActionValue `json:"purchase_roas"`
}

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors Cursors `json:"cursors"`
	Next    string  `json:"next,omitempty"`
}

// InsightsResponse é uma página de /act_{id}/insights
type InsightsResponse struct {
	Data   []CampaignInsight `json:"data"`
	Paging Paging            `json:"paging"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func DecodeInsights(body []byte) (*InsightsResponse, error) {
	var page InsightsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
