package config

import "testing"

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    Config
		wantErr bool
	}{
		{
			name: "defaults",
			env:  nil,
			want: Config{LogLevel: "info", Workers: 0, HistoryLimit: 50},
		},
		{
			name: "all set",
			env:  map[string]string{EnvLogLevel: "debug", EnvWorkers: "4", EnvHistoryLimit: "10"},
			want: Config{LogLevel: "debug", Workers: 4, HistoryLimit: 10},
		},
		{
			name: "empty values keep defaults",
			env:  map[string]string{EnvLogLevel: "", EnvWorkers: ""},
			want: Config{LogLevel: "info", Workers: 0, HistoryLimit: 50},
		},
		{
			name:    "bad workers",
			env:     map[string]string{EnvWorkers: "many"},
			wantErr: true,
		},
		{
			name:    "negative history limit",
			env:     map[string]string{EnvHistoryLimit: "-1"},
			wantErr: true,
		},
		{
			name:    "unknown log level",
			env:     map[string]string{EnvLogLevel: "chatty"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := load(envMap(tt.env))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvWorkers, "2")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers: got %d, want 2", cfg.Workers)
	}
}
