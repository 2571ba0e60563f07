package handler

import (
	"github.com/sip-kpbj/api/internal/core/domain"
	"github.com/sip-kpbj/api/internal/core/ports"
)

// --- Domain → Response ---

func toSessionUser(u *domain.User) *sessionUser {
	if u == nil {
		return nil
	}
	return &sessionUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
	}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func toListUsersResponse(res *ports.ListUsersResult) listUsersResponse {
	data := make([]userResponse, 0, len(res.Items))
	for _, u := range res.Items {
		data = append(data, toUserResponse(u))
	}
	return listUsersResponse{
		Data: data,
		Pagination: paginationMeta{
			Page:       res.Page,
			Limit:      res.Limit,
			Total:      res.Total,
			TotalPages: res.TotalPages,
		},
	}
}

// --- Request → Service input ---

func toCreateUserInput(req createUserRequest) ports.CreateUserInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return ports.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      domain.Role(req.Role),
		IsActive:  active,
	}
}

func toUpdateUserInput(req updateUserRequest) ports.UpdateUserInput {
	in := ports.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		IsActive:  req.IsActive,
	}
	if req.Role != nil {
		r := domain.Role(*req.Role)
		in.Role = &r
	}
	return in
}
