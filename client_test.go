package madsearch

import "testing"

func TestNew_NoAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithRedis("localhost:6379")(cfg)
	if len(cfg.addrs) != 1 || cfg.addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v, want [localhost:6379]", cfg.addrs)
	}

	WithPassword("secret")(cfg)
	if cfg.password != "secret" {
		t.Errorf("password = %q, want secret", cfg.password)
	}

	WithDB(3)(cfg)
	if cfg.db != 3 {
		t.Errorf("db = %d, want 3", cfg.db)
	}

	WithKeyPrefix("staging:")(cfg)
	if cfg.entityPrefix != "staging:" {
		t.Errorf("entityPrefix = %q, want staging:", cfg.entityPrefix)
	}

	WithOrphanGrace(48)(cfg)
	if cfg.graceHours != 48 {
		t.Errorf("graceHours = %d, want 48", cfg.graceHours)
	}
}

func TestToCard_Schedule(t *testing.T) {
	withDue := toCard(Card{ID: "c1", DueDate: 5000})
	if withDue.Schedule == nil || withDue.Schedule.DueDate != 5000 {
		t.Errorf("schedule = %+v, want due date 5000", withDue.Schedule)
	}

	noDue := toCard(Card{ID: "c2"})
	if noDue.Schedule != nil {
		t.Errorf("schedule = %+v, want nil", noDue.Schedule)
	}
}
