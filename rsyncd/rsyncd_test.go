package rsyncd

import (
	"net"
	"testing"
)

func TestModuleReadOnly(t *testing.T) {
	for _, tt := range []struct {
		name string
		mod  Module
		want bool
	}{
		{"default zero value", Module{}, true},
		{"writable", Module{Writable: true}, false},
		{"writable but read_only", Module{Writable: true, ReadOnly: true}, true},
		{"writable but write_only still rejects receiver", Module{Writable: true, WriteOnly: true}, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mod.readOnly(); got != tt.want {
				t.Errorf("readOnly() = %v, want %v", got, tt.want)
			}
		})
	}
}

type fakeAddr string

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string  { return string(a) }

func TestCheckHosts(t *testing.T) {
	for _, tt := range []struct {
		name    string
		mod     Module
		addr    net.Addr
		wantErr bool
	}{
		{"no restrictions", Module{}, fakeAddr("10.0.0.5:1234"), false},
		{"allow matches cidr", Module{HostsAllow: []string{"10.0.0.0/8"}}, fakeAddr("10.0.0.5:1234"), false},
		{"allow does not match", Module{HostsAllow: []string{"10.0.0.0/8"}}, fakeAddr("192.168.1.1:1234"), true},
		{"deny matches", Module{HostsDeny: []string{"192.168.1.1"}}, fakeAddr("192.168.1.1:1234"), true},
		{"deny does not match", Module{HostsDeny: []string{"192.168.1.1"}}, fakeAddr("10.0.0.5:1234"), false},
		{"allow takes precedence over deny", Module{HostsAllow: []string{"all"}, HostsDeny: []string{"all"}}, fakeAddr("10.0.0.5:1234"), false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := checkHosts(tt.mod, tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkHosts() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckRefusedOptions(t *testing.T) {
	mod := Module{Name: "backup", RefuseOptions: []string{"delete", "checksum"}}
	for _, tt := range []struct {
		name    string
		flags   []string
		wantErr bool
	}{
		{"no flags", nil, false},
		{"unrelated flag", []string{"--archive"}, false},
		{"refused flag", []string{"--delete"}, true},
		{"refused flag with inline value", []string{"--checksum=md5"}, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := checkRefusedOptions(mod, tt.flags)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkRefusedOptions(%q) = %v, wantErr %v", tt.flags, err, tt.wantErr)
			}
		})
	}
}

func TestAcquireSlotEnforcesMaxConnections(t *testing.T) {
	mod := Module{Name: "limited", Path: "/tmp", Writable: true, MaxConnections: 1}
	srv, err := NewServer([]Module{mod})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	release, err := srv.acquireSlot(mod)
	if err != nil {
		t.Fatalf("acquireSlot() (first) = %v, want nil", err)
	}

	if _, err := srv.acquireSlot(mod); err == nil {
		t.Error("acquireSlot() (second, over limit) = nil, want error")
	}

	release()

	if release2, err := srv.acquireSlot(mod); err != nil {
		t.Errorf("acquireSlot() after release = %v, want nil", err)
	} else {
		release2()
	}
}

func TestAcquireSlotUnlimitedByDefault(t *testing.T) {
	mod := Module{Name: "open", Path: "/tmp", Writable: true}
	srv, err := NewServer([]Module{mod})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := srv.acquireSlot(mod); err != nil {
			t.Fatalf("acquireSlot() iteration %d = %v, want nil", i, err)
		}
	}
}

func TestFormatModuleList(t *testing.T) {
	srv, err := NewServer([]Module{
		{Name: "data", Path: "/srv/data", Writable: true, Comment: "shared data"},
		{Name: "nocomment", Path: "/srv/nocomment", Writable: true},
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	got := srv.formatModuleList()
	want := "data\tshared data\nnocomment\tnocomment\n"
	if got != want {
		t.Errorf("formatModuleList() = %q, want %q", got, want)
	}
}

func TestValidateModule(t *testing.T) {
	for _, tt := range []struct {
		name    string
		mod     Module
		wantErr bool
	}{
		{"valid", Module{Name: "ok", Path: "/srv/ok"}, false},
		{"missing name", Module{Path: "/srv/ok"}, true},
		{"missing path", Module{Name: "ok"}, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := validateModule(tt.mod)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateModule() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
