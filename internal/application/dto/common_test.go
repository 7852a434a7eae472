package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/onu-almacen-api/internal/application/dto"
)

func TestDefaultPage(t *testing.T) {
	cases := []struct {
		in, want dto.PageRequest
	}{
		{dto.PageRequest{}, dto.PageRequest{Limit: 20}},
		{dto.PageRequest{Limit: -3, Offset: -1}, dto.PageRequest{Limit: 20}},
		{dto.PageRequest{Limit: 500, Offset: 40}, dto.PageRequest{Limit: 100, Offset: 40}},
		{dto.PageRequest{Limit: 7, Offset: 14}, dto.PageRequest{Limit: 7, Offset: 14}},
	}
	for _, c := range cases {
		got := c.in
		got.DefaultPage()
		assert.Equal(t, c.want, got)
	}
}

func TestPage(t *testing.T) {
	p := dto.PageRequest{Limit: 10, Offset: 30}
	assert.Equal(t, dto.PageResponse{Limit: 10, Offset: 30, Total: 95}, p.Page(95))
}
