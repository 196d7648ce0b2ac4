package dto

import "time"

type CreateBraincellRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

type UpdateBraincellRequest struct {
	Id      string `json:"id" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

type DeleteBraincellRequest struct {
	Id string `json:"id" validate:"required"`
}

type BraincellResponse struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserId    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
