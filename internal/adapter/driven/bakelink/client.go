package bakelink

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Client groups the backend's resource services over one Pipeline.
type Client struct {
	pipeline *Pipeline

	Auth              *AuthService
	Orders            *ResourceService
	Products          *ResourceService
	ProductCategories *ResourceService
	Schedules         *ScheduleService
	Uploads           *UploadService
}

// NewClient wires every resource service to p.
func NewClient(p *Pipeline) *Client {
	return &Client{
		pipeline:          p,
		Auth:              &AuthService{p: p},
		Orders:            &ResourceService{collection{p: p, base: "/orders"}},
		Products:          &ResourceService{collection{p: p, base: "/products"}},
		ProductCategories: &ResourceService{collection{p: p, base: "/product-categories"}},
		Schedules:         &ScheduleService{collection{p: p, base: "/schedules"}},
		Uploads:           &UploadService{p: p},
	}
}

// Pipeline returns the underlying request pipeline.
func (c *Client) Pipeline() *Pipeline {
	return c.pipeline
}

// collection holds the list/create/update/delete operations every
// backend resource shares.
type collection struct {
	p    *Pipeline
	base string
}

// List queries the resource with filter as the request body.
func (c collection) List(ctx context.Context, filter any) (*Response, error) {
	return c.p.Post(ctx, c.base+"/list", filter)
}

// Create creates a new record from data.
func (c collection) Create(ctx context.Context, data any) (*Response, error) {
	return c.p.Post(ctx, c.base, data)
}

// Update replaces the record identified by id with data.
func (c collection) Update(ctx context.Context, id string, data any) (*Response, error) {
	path, err := c.item(id)
	if err != nil {
		return nil, err
	}
	return c.p.Put(ctx, path, data)
}

// Delete removes the record identified by id.
func (c collection) Delete(ctx context.Context, id string) (*Response, error) {
	path, err := c.item(id)
	if err != nil {
		return nil, err
	}
	return c.p.Delete(ctx, path, nil)
}

func (c collection) item(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%s: empty id", c.base)
	}
	return c.base + "/" + url.PathEscape(id), nil
}

// ResourceService serves orders, products and product categories.
type ResourceService struct {
	collection
}

// GetByID fetches a single record.
func (s *ResourceService) GetByID(ctx context.Context, id string) (*Response, error) {
	path, err := s.item(id)
	if err != nil {
		return nil, err
	}
	return s.p.Get(ctx, path)
}

// ScheduleService serves production schedules, which are addressed by
// calendar date rather than by id for reads.
type ScheduleService struct {
	collection
}

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// GetByDate fetches the schedule for a single day.
func (s *ScheduleService) GetByDate(ctx context.Context, day time.Time) (*Response, error) {
	return s.p.Get(ctx, s.base+"/"+day.Format(dateLayout))
}

// GetByMonth fetches every schedule in the month containing month.
func (s *ScheduleService) GetByMonth(ctx context.Context, month time.Time) (*Response, error) {
	return s.p.Get(ctx, s.base+"/month/"+month.Format(monthLayout))
}

// ParseDate parses a YYYY-MM-DD schedule date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseMonth parses a YYYY-MM schedule month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return t, nil
}
