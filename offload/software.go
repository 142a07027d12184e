package offload

import (
	"encoding/binary"
	"fmt"

	"github.com/dot5enko/offload-filter/bits"
	"github.com/dot5enko/offload-filter/lists"
	"github.com/dot5enko/offload-filter/predicate"
)

// SoftwareDevice runs a predicate program on the CPU behind the same call
// contract as an accelerator. Operands are read in place from the
// uploaded buffers.
type SoftwareDevice struct {
	program  *predicate.Program
	capacity int

	state deviceState

	columns [][]byte
	count   int

	merger       *lists.IndiceUnmerged
	indicesCache []uint16
}

func NewSoftwareDevice(program *predicate.Program, capacity int) (*SoftwareDevice, error) {
	if program == nil {
		return nil, fmt.Errorf("software device needs a program")
	}

	if err := program.Validate(); err != nil {
		return nil, err
	}

	if capacity <= 0 || capacity > bits.BitfieldBits {
		return nil, fmt.Errorf("software device capacity %d out of range (0, %d]", capacity, bits.BitfieldBits)
	}

	return &SoftwareDevice{
		program:  program,
		capacity: capacity,
		merger:   lists.NewUnmerged(),
	}, nil
}

func (d *SoftwareDevice) expect(call string, states ...deviceState) error {
	for _, s := range states {
		if d.state == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %s while device is %s", ErrDeviceState, call, d.state.String())
}

func (d *SoftwareDevice) InitializeDevice() error {
	if err := d.expect("initialize", stateCreated); err != nil {
		return err
	}

	d.indicesCache = make([]uint16, d.capacity)
	d.state = stateReady

	return nil
}

func (d *SoftwareDevice) UploadOperands(columns [][]byte, sizeHeader, countHeader []byte) error {
	if err := d.expect("upload", stateReady); err != nil {
		return err
	}

	if len(columns) != len(d.program.Bindings) {
		return fmt.Errorf("program binds %d columns, %d uploaded", len(d.program.Bindings), len(columns))
	}

	count := int(bits.ReadI32At(countHeader, binary.LittleEndian))
	size := int(bits.ReadI32At(sizeHeader, binary.LittleEndian))

	if count < 0 {
		return fmt.Errorf("negative record count %d", count)
	}

	if count > d.capacity {
		return fmt.Errorf("%w: %d records, capacity %d", ErrCapacity, count, d.capacity)
	}

	if size != count*d.program.Width() {
		return fmt.Errorf("byte size header %d does not match %d records of width %d", size, count, d.program.Width())
	}

	for idx, col := range columns {
		if len(col) < size {
			return fmt.Errorf("column buffer %d holds %d bytes, %d expected", idx, len(col), size)
		}
	}

	d.columns = columns
	d.count = count
	d.state = stateUploaded

	return nil
}

func (d *SoftwareDevice) ExecuteBatch() error {
	if err := d.expect("execute", stateUploaded); err != nil {
		return err
	}

	d.merger.Reset()

	for _, c := range d.program.Conditions {
		binding := d.program.Bindings[c.Column]

		_, err := predicate.FilterColumn(c, binding.Type, d.columns[c.Column], d.count, d.merger, d.indicesCache)
		if err != nil {
			return fmt.Errorf("condition %s failed: %w", c.String(), err)
		}

		if d.merger.FullSkip() {
			break
		}
	}

	d.state = stateExecuted

	return nil
}

func (d *SoftwareDevice) DownloadResult(result []byte, countHeader []byte) error {
	if err := d.expect("download", stateExecuted); err != nil {
		return err
	}

	count := int(bits.ReadI32At(countHeader, binary.LittleEndian))
	if count != d.count {
		return fmt.Errorf("download asks for %d records, %d were uploaded", count, d.count)
	}

	if len(result) < count {
		return fmt.Errorf("%w: result buffer holds %d bytes, %d records", ErrCapacity, len(result), count)
	}

	for i := 0; i < count; i++ {
		if d.merger.Matches(i) {
			result[i] = 1
		} else {
			result[i] = 0
		}
	}

	d.columns = nil
	d.state = stateReady

	return nil
}

func (d *SoftwareDevice) Close() error {
	d.columns = nil
	d.indicesCache = nil
	d.state = stateClosed
	return nil
}
