package control

import (
	"os"
	"strconv"
	"strings"
)

// cpuTemperatureC reads the Raspberry Pi thermal zone, matching
// original_source/HoopiPi/JackBackend.cpp's getCPUTemperature(). Returns -1
// if the thermal zone isn't present (e.g. running off-device).
func cpuTemperatureC() float64 {
	data, err := os.ReadFile("/sys/class/thermal/thermal_zone0/temp")
	if err != nil {
		return -1
	}
	milliDegrees, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return -1
	}
	return float64(milliDegrees) / 1000.0
}

// processRSSBytes reads the resident set size of this process from
// /proc/self/status, matching getMemoryUsage()'s VmRSS parse. Returns -1 if
// unavailable.
func processRSSBytes() int64 {
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return -1
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return -1
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return -1
		}
		return kb * 1024
	}
	return -1
}
