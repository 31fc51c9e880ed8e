package store

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "username constraint",
			err:  &pq.Error{Code: "23505", Constraint: "users_username_key"},
			want: ErrDuplicateUsername,
		},
		{
			name: "email constraint",
			err:  &pq.Error{Code: "23505", Constraint: "users_email_key"},
			want: ErrDuplicateEmail,
		},
		{
			name: "pair constraint",
			err:  &pq.Error{Code: "23505", Constraint: "ratings_user_id_farmer_id_key"},
			want: ErrDuplicate,
		},
		{
			name: "other pq error",
			err:  &pq.Error{Code: "23503", Constraint: "farmers_user_id_fkey"},
			want: nil,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, uniqueViolation(tc.err))
		})
	}
}
