package service

import (
	"context"

	"github.com/coopfin/coophub/db/models"
)

type MemberParams struct {
	FirstName string
	LastName  string
	Document  string
	Email     string
	Phone     string
	CreatedBy int64
}

func (svc *CoophubService) CreateMember(ctx context.Context, params MemberParams) (*models.Member, error) {
	if params.FirstName == "" || params.LastName == "" {
		return nil, ValidationError{Reason: "first and last name are required"}
	}
	member := &models.Member{
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Document:  params.Document,
		Email:     params.Email,
		Phone:     params.Phone,
		IsActive:  true,
	}
	_, err := svc.DB.NewInsert().Model(member).Exec(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	svc.auditLog(ctx, params.CreatedBy, "create", "member", member.ID, nil)
	return member, nil
}

func (svc *CoophubService) FindMember(ctx context.Context, memberId int64) (*models.Member, error) {
	member := &models.Member{}
	err := svc.DB.NewSelect().Model(member).Where("member.id = ?", memberId).Limit(1).Scan(ctx)
	if err != nil {
		return nil, asCoreError(notFoundOr(err, "member", memberId))
	}
	return member, nil
}

func (svc *CoophubService) Members(ctx context.Context) ([]models.Member, error) {
	members := []models.Member{}
	err := svc.DB.NewSelect().Model(&members).OrderExpr("id ASC").Scan(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	return members, nil
}

func (svc *CoophubService) UpdateMember(ctx context.Context, memberId int64, params MemberParams) (*models.Member, error) {
	member, err := svc.FindMember(ctx, memberId)
	if err != nil {
		return nil, err
	}
	if params.FirstName != "" {
		member.FirstName = params.FirstName
	}
	if params.LastName != "" {
		member.LastName = params.LastName
	}
	if params.Document != "" {
		member.Document = params.Document
	}
	if params.Email != "" {
		member.Email = params.Email
	}
	if params.Phone != "" {
		member.Phone = params.Phone
	}
	_, err = svc.DB.NewUpdate().Model(member).WherePK().Exec(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	svc.auditLog(ctx, params.CreatedBy, "update", "member", member.ID, nil)
	return member, nil
}

// DeactivateMember soft-deletes a member. Their obligations and payment
// history remain untouched.
func (svc *CoophubService) DeactivateMember(ctx context.Context, memberId int64, actor int64) (*models.Member, error) {
	member, err := svc.FindMember(ctx, memberId)
	if err != nil {
		return nil, err
	}
	member.IsActive = false
	_, err = svc.DB.NewUpdate().Model(member).Column("is_active", "updated_at").WherePK().Exec(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	svc.auditLog(ctx, actor, "deactivate", "member", member.ID, nil)
	return member, nil
}
