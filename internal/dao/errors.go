package dao

import "errors"

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// ErrDuplicate 唯一索引冲突
var ErrDuplicate = errors.New("record already exists")
