package httpapi

// QuoteRequest — тело POST /quote. Поля any: тип проверяется вручную,
// чтобы отличать "нет поля" от "не тот формат".
type QuoteRequest struct {
	Action        any `json:"action"`
	BaseCurrency  any `json:"baseCurrency"`
	QuoteCurrency any `json:"quoteCurrency"`
	Amount        any `json:"amount"`
}

type QuoteResponse struct {
	Total     float64 `json:"total"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	BestPrice float64 `json:"bestPrice"`
	LastPrice float64 `json:"lastPrice"`
	Unfilled  float64 `json:"unfilled"`
}

// RateResponse — ответ на /api/rate: цены в соглашении запрошенной пары.
type RateResponse struct {
	Base      string  `json:"base"`
	Quote     string  `json:"quote"`
	ProductID string  `json:"productId"`
	Reversed  bool    `json:"reversed"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Mid       float64 `json:"mid"`
}

type ProductsResponse struct {
	Venue    string   `json:"venue"`
	Products []string `json:"products"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
