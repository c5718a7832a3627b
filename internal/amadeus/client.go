package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jeni-t/flightbooking/config"
	"github.com/jeni-t/flightbooking/internal/domain"
)

// StatusLookup is the capability the tracking core consumes. A lookup never
// fails: upstream errors surface as a record with Status == StatusUnknown.
type StatusLookup interface {
	FlightStatus(ctx context.Context, flightNumber, date string) domain.FlightStatusRecord
}

type Client struct {
	baseURL   string
	authURL   string
	apiKey    string
	apiSecret string
	http      *http.Client

	mu    sync.Mutex
	token string
}

func NewClient(cfg config.AmadeusConfig) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		authURL:   cfg.AuthURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		http:      &http.Client{Timeout: time.Duration(cfg.RequestTimeoutSecs) * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type scheduleResponse struct {
	Data []scheduledFlight `json:"data"`
}

type scheduledFlight struct {
	FlightDesignator struct {
		CarrierCode  string `json:"carrierCode"`
		FlightNumber string `json:"flightNumber"`
	} `json:"flightDesignator"`
	Departure    flightPoint `json:"departure"`
	Arrival      flightPoint `json:"arrival"`
	FlightStatus string      `json:"flightStatus"`
}

type flightPoint struct {
	IATACode          string `json:"iataCode"`
	ScheduledDateTime string `json:"scheduledDateTime"`
	ActualDateTime    string `json:"actualDateTime"`
}

// FlightStatus looks up the current schedule for one flight. Upstream failure of
// any kind (auth, network, empty result set) yields an Unknown record; the caller
// treats "no data" as a valid low-priority state, not an error.
func (c *Client) FlightStatus(ctx context.Context, flightNumber, date string) domain.FlightStatusRecord {
	carrier, number, err := splitFlightNumber(flightNumber)
	if err != nil {
		log.Printf("flight status %s: %v", flightNumber, err)
		return domain.UnknownStatusRecord(flightNumber, date)
	}

	q := url.Values{}
	q.Set("carrierCode", carrier)
	q.Set("flightNumber", number)
	q.Set("scheduledDepartureDate", date)
	endpoint := c.baseURL + "/v2/schedule/flights?" + q.Encode()

	body, err := c.getWithAuth(ctx, endpoint)
	if err != nil {
		log.Printf("flight status %s on %s: %v", flightNumber, date, err)
		return domain.UnknownStatusRecord(flightNumber, date)
	}

	var resp scheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Data) == 0 {
		log.Printf("flight status %s on %s: no usable data", flightNumber, date)
		return domain.UnknownStatusRecord(flightNumber, date)
	}

	return normalize(flightNumber, date, resp.Data[0])
}

// FlightOffers searches bookable itineraries between two airports on a date.
func (c *Client) FlightOffers(ctx context.Context, origin, destination, date string) ([]domain.FlightOffer, error) {
	q := url.Values{}
	q.Set("originLocationCode", origin)
	q.Set("destinationLocationCode", destination)
	q.Set("departureDate", date)
	q.Set("adults", "1")
	endpoint := c.baseURL + "/v2/shopping/flight-offers?" + q.Encode()

	body, err := c.getWithAuth(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("search flight offers: %w", err)
	}

	var resp offersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode flight offers: %w", err)
	}

	offers := make([]domain.FlightOffer, 0, len(resp.Data))
	for _, o := range resp.Data {
		offers = append(offers, o.toDomain())
	}
	return offers, nil
}

type offersResponse struct {
	Data []rawOffer `json:"data"`
}

type rawOffer struct {
	ID          string `json:"id"`
	Itineraries []struct {
		Segments []struct {
			CarrierCode string `json:"carrierCode"`
			Number      string `json:"number"`
			Departure   struct {
				IATACode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"departure"`
			Arrival struct {
				IATACode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"arrival"`
		} `json:"segments"`
	} `json:"itineraries"`
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
}

func (o rawOffer) toDomain() domain.FlightOffer {
	offer := domain.FlightOffer{
		ID:         o.ID,
		PriceTotal: o.Price.Total,
		Currency:   o.Price.Currency,
	}
	if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return offer
	}
	segments := o.Itineraries[0].Segments
	first, last := segments[0], segments[len(segments)-1]
	offer.Carrier = first.CarrierCode
	offer.FlightNumber = first.CarrierCode + first.Number
	offer.Origin = first.Departure.IATACode
	offer.Destination = last.Arrival.IATACode
	offer.DepartureAt = first.Departure.At
	offer.ArrivalAt = last.Arrival.At
	return offer
}

// getWithAuth performs a bearer-authenticated GET. An expired token is refreshed
// and the request retried once; a second 401 is returned as an error.
func (c *Client) getWithAuth(ctx context.Context, endpoint string) ([]byte, error) {
	token, err := c.accessToken(ctx, false)
	if err != nil {
		return nil, err
	}

	body, status, err := c.get(ctx, endpoint, token)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		token, err = c.accessToken(ctx, true)
		if err != nil {
			return nil, err
		}
		body, status, err = c.get(ctx, endpoint, token)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("amadeus returned status %d", status)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint, token string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

func (c *Client) accessToken(ctx context.Context, force bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && !force {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.apiKey)
	form.Set("client_secret", c.apiSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode access token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", errors.New("token endpoint returned empty token")
	}

	c.token = tr.AccessToken
	return c.token, nil
}

// normalize maps a raw schedule entry to the canonical record. Cancellation wins;
// otherwise an actual departure later than scheduled means Delayed.
func normalize(flightNumber, date string, raw scheduledFlight) domain.FlightStatusRecord {
	record := domain.FlightStatusRecord{
		FlightNumber: flightNumber,
		Date:         date,
		Departure: domain.FlightLeg{
			Airport:       raw.Departure.IATACode,
			ScheduledTime: parseTime(raw.Departure.ScheduledDateTime),
			ActualTime:    parseTime(raw.Departure.ActualDateTime),
		},
		Arrival: domain.FlightLeg{
			Airport:       raw.Arrival.IATACode,
			ScheduledTime: parseTime(raw.Arrival.ScheduledDateTime),
			ActualTime:    parseTime(raw.Arrival.ActualDateTime),
		},
	}

	switch {
	case strings.EqualFold(raw.FlightStatus, "Cancelled"), strings.EqualFold(raw.FlightStatus, "Canceled"):
		record.Status = domain.StatusCanceled
	case strings.EqualFold(raw.FlightStatus, "Delayed"):
		record.Status = domain.StatusDelayed
	case !record.Departure.ActualTime.IsZero() && record.Departure.ActualTime.After(record.Departure.ScheduledTime):
		record.Status = domain.StatusDelayed
	default:
		record.Status = domain.StatusOnTime
	}
	return record
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func splitFlightNumber(flightNumber string) (carrier, number string, err error) {
	if len(flightNumber) < 3 {
		return "", "", fmt.Errorf("invalid flight number %q", flightNumber)
	}
	return flightNumber[:2], flightNumber[2:], nil
}

var _ StatusLookup = (*Client)(nil)
