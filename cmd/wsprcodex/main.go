package main

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for "wsprcodex": carry arbitrary bytes
 *		in the callsign, grid square and power fields of
 *		standard WSPR messages, and get them back.
 *
 *---------------------------------------------------------------*/

import (
	wsprcodex "github.com/doismellburning/wsprcodex/src"
)

func main() {
	wsprcodex.WSPRCodexMain()
}
