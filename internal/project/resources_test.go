package project

import "testing"

func TestResourcesLinux(t *testing.T) {
	res, err := Resources{Memory: "1GiB", CPUs: "1.5"}.Linux()
	if err != nil {
		t.Fatalf("Linux() error = %v", err)
	}
	if res.Memory == nil || *res.Memory.Limit != 1<<30 {
		t.Fatalf("memory limit = %v, want %d", res.Memory, 1<<30)
	}
	if res.CPU == nil || *res.CPU.Quota != 150000 || *res.CPU.Period != cpuPeriod {
		t.Fatalf("cpu = %+v, want quota 150000 over %d", res.CPU, cpuPeriod)
	}
}

func TestResourcesLinuxUnset(t *testing.T) {
	res, err := Resources{}.Linux()
	if err != nil {
		t.Fatalf("Linux() error = %v", err)
	}
	if res.Memory != nil || res.CPU != nil {
		t.Fatalf("Linux() = %+v, want no limits", res)
	}
}

func TestResourcesLinuxSIUnits(t *testing.T) {
	res, err := Resources{Memory: "512MB"}.Linux()
	if err != nil {
		t.Fatalf("Linux() error = %v", err)
	}
	if *res.Memory.Limit != 512000000 {
		t.Fatalf("memory limit = %d, want 512000000", *res.Memory.Limit)
	}
}
