package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dza1/devseed/plugins/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDevicesTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDevices(&buf, "table", device.SeedDevices()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"ID", "NAME", "IP", "ADDRESS"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"3", "Firewall1", "192.168.1.3"}, strings.Fields(lines[4]))
}

func TestWriteDevicesEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDevices(&buf, "", nil))
	assert.Equal(t, "No devices found.\n", buf.String())
}

func TestWriteDevicesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDevices(&buf, "json", device.SeedDevices()[:1]))
	assert.JSONEq(t, `[{"id":1,"name":"Router1","ip_address":"192.168.1.1"}]`, buf.String())
}

func TestWriteDevicesYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDevices(&buf, "yaml", device.SeedDevices()[1:2]))
	assert.YAMLEq(t, "- id: 2\n  name: Switch1\n  ip_address: 192.168.1.2\n", buf.String())
}

func TestWriteDevicesUnknownFormat(t *testing.T) {
	assert.Error(t, writeDevices(&bytes.Buffer{}, "xml", nil))
}
