// Package cdpdriver implements marauder.Automation on top of a local
// Chrome or Chromium driven over the DevTools protocol.
package cdpdriver
