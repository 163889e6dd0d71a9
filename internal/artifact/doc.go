// Package artifact persists generated payload bytes to the payload
// directory.
//
// Files are named after the payload module with "/" replaced by "_" and the
// requested format as extension, so windows/meterpreter/reverse_tcp in exe
// format lands at <dir>/windows_meterpreter_reverse_tcp.exe. Saving the
// same module and format twice overwrites the earlier file.
package artifact
