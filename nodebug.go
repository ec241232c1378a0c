// Copyright (c) 2024 the bkfdd authors
//
// MIT License

//go:build !debug
// +build !debug

package bkfdd

const _DEBUG bool = false
const _LOGLEVEL int = 0

func (b *DD) logTable() {}
