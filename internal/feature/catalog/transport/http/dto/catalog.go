// Package dto converts catalog entities to API bodies.
package dto

import (
	"course_backend/internal/api"
	"course_backend/internal/feature/catalog/domain/entity"
)

func Course(c *entity.Course) api.CourseResponse {
	return api.CourseResponse{
		Id:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		PriceInCents: c.PriceInCents,
		CreatedAt:    c.CreatedAt,
	}
}

func Courses(cs []entity.Course) []api.CourseResponse {
	out := make([]api.CourseResponse, 0, len(cs))
	for i := range cs {
		out = append(out, Course(&cs[i]))
	}
	return out
}

func Purchase(p *entity.Purchase) api.PurchaseResponse {
	return api.PurchaseResponse{
		Id:               p.ID,
		UserId:           p.UserID,
		CourseId:         p.CourseID,
		PricePaidInCents: p.PricePaidInCents,
		CreatedAt:        p.CreatedAt,
	}
}

func Purchases(ps []entity.Purchase) []api.PurchaseResponse {
	out := make([]api.PurchaseResponse, 0, len(ps))
	for i := range ps {
		out = append(out, Purchase(&ps[i]))
	}
	return out
}
