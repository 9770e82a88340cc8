// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// memo is the command line front end for the memoization engine. It inspects
// and purges store files and runs the timed selftest scenario.
package main
