package observe

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// TestConfig_Validate exercises the validation rules.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing service name",
			cfg:     Config{},
			wantErr: "service name",
		},
		{
			name: "minimal valid",
			cfg:  Config{ServiceName: "toolcache"},
		},
		{
			name: "valid full",
			cfg: Config{
				ServiceName: "toolcache",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 0.5},
				Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
				Logging:     LoggingConfig{Enabled: true, Level: "debug"},
			},
		},
		{
			name: "unknown trace exporter",
			cfg: Config{
				ServiceName: "toolcache",
				Tracing:     TracingConfig{Enabled: true, Exporter: "jaeger"},
			},
			wantErr: "unknown trace exporter",
		},
		{
			name: "sample out of range",
			cfg: Config{
				ServiceName: "toolcache",
				Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.5},
			},
			wantErr: "sample percentage",
		},
		{
			name: "unknown metrics exporter",
			cfg: Config{
				ServiceName: "toolcache",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "statsd"},
			},
			wantErr: "unknown metrics exporter",
		},
		{
			name: "unknown log level",
			cfg: Config{
				ServiceName: "toolcache",
				Logging:     LoggingConfig{Enabled: true, Level: "trace"},
			},
			wantErr: "unknown log level",
		},
		{
			name: "disabled subsystems skip validation",
			cfg: Config{
				ServiceName: "toolcache",
				Tracing:     TracingConfig{Enabled: false, Exporter: "bogus"},
				Metrics:     MetricsConfig{Enabled: false, Exporter: "bogus"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

// TestSetup_Disabled verifies disabled subsystems yield working no-ops.
func TestSetup_Disabled(t *testing.T) {
	ctx := context.Background()
	tel, err := Setup(ctx, Config{ServiceName: "toolcache"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if tel.Logger == nil || tel.Metrics == nil {
		t.Fatal("Setup returned nil subsystems")
	}

	// All of these must be safe without enabled backends.
	tel.Logger.Info(ctx, "record")
	tel.Metrics.RecordLookup(ctx, "Read", true)
	opCtx, span := tel.StartOp(ctx, "precheck", "Read")
	if opCtx == nil || span == nil {
		t.Fatal("StartOp returned nil")
	}
	tel.EndOp(span, nil)
	_, errSpan := tel.StartOp(ctx, "poststore", "Read")
	tel.EndOp(errSpan, errors.New("degraded"))

	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

// TestSetup_NoneExporters verifies enabled subsystems with the "none"
// exporter produce real providers that shut down cleanly.
func TestSetup_NoneExporters(t *testing.T) {
	ctx := context.Background()
	tel, err := Setup(ctx, Config{
		ServiceName: "toolcache",
		Version:     "0.1.0",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	opCtx, span := tel.StartOp(ctx, "poststore", "Grep")
	tel.Metrics.RecordStore(opCtx, "Grep", true, "")
	tel.EndOp(span, nil)

	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	// Second shutdown is a no-op.
	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}

// TestSetup_StdoutMetrics verifies the stdout exporter wires up.
func TestSetup_StdoutMetrics(t *testing.T) {
	ctx := context.Background()
	tel, err := Setup(ctx, Config{
		ServiceName: "toolcache",
		Metrics:     MetricsConfig{Enabled: true, Exporter: "stdout"},
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	tel.Metrics.RecordEvictions(ctx, 1)
	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

// TestSetup_InvalidConfig verifies Setup refuses invalid configuration.
func TestSetup_InvalidConfig(t *testing.T) {
	if _, err := Setup(context.Background(), Config{}); err == nil {
		t.Fatal("Setup accepted empty configuration")
	}
}
