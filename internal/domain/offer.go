package domain

// FlightOffer is a bookable itinerary returned by the offers search.
type FlightOffer struct {
	ID           string `json:"id"`
	Carrier      string `json:"carrier"`
	FlightNumber string `json:"flight_number"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	DepartureAt  string `json:"departure_at"`
	ArrivalAt    string `json:"arrival_at"`
	PriceTotal   string `json:"price_total"`
	Currency     string `json:"currency"`
}
