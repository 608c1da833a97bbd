package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrUnauthenticated 没有登录用户（actor 为 0），不会访问数据库
	ErrUnauthenticated = errors.New("authentication required")
	// ErrPermissionDenied 无权操作
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument 参数错误
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyProcessed 申请已被处理
	ErrAlreadyProcessed = errors.New("request already processed")
	// ErrConflict 重复操作（已是成员、重复申请等）
	ErrConflict = errors.New("conflict")
)

func invalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func conflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

// notFound 把 gorm.ErrRecordNotFound 归一成 ErrNotFound，其余错误原样返回
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

func requireActor(actorID uint64) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}
	return nil
}
