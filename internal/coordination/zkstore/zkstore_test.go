package zkstore

import (
	"errors"
	"testing"
	"time"

	"github.com/go-zookeeper/zk"

	"pkt.systems/trackd/internal/coordination"
)

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		in   error
		want error
	}{
		{nil, nil},
		{zk.ErrNoNode, coordination.ErrNotFound},
		{zk.ErrNodeExists, coordination.ErrNodeExists},
		{zk.ErrBadVersion, coordination.ErrBadVersion},
	}
	for _, tc := range cases {
		if got := mapErr(tc.in); !errors.Is(got, tc.want) {
			t.Fatalf("mapErr(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	opaque := errors.New("zk: session expired")
	if got := mapErr(opaque); got != opaque {
		t.Fatalf("opaque error rewritten: %v", got)
	}
}

func TestStatConversion(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	stat := fromZkStat(&zk.Stat{
		Mzxid:      42,
		Version:    3,
		Mtime:      now.UnixMilli(),
		DataLength: 7,
	})
	if stat.Mzxid != 42 || stat.Version != 3 || stat.DataLength != 7 {
		t.Fatalf("unexpected stat: %+v", stat)
	}
	if !stat.ModifiedAt.Equal(now) {
		t.Fatalf("mtime mismatch: %v vs %v", stat.ModifiedAt, now)
	}
}

func TestNewRequiresServers(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for empty server list")
	}
}
