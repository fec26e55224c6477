package mapi

import "fmt"

// Recurrence pattern types.
const (
	PatternDay        uint16 = 0x0
	PatternWeek       uint16 = 0x1
	PatternMonth      uint16 = 0x2
	PatternMonthNth   uint16 = 0x3
	PatternMonthEnd   uint16 = 0x4
	PatternHjMonth    uint16 = 0xA
	PatternHjMonthNth uint16 = 0xB
	PatternHjMonthEnd uint16 = 0xC
)

// Exception override flags.
const (
	AROSubject       uint16 = 0x0001
	AROMeetingType   uint16 = 0x0002
	AROReminderDelta uint16 = 0x0004
	AROReminder      uint16 = 0x0008
	AROLocation      uint16 = 0x0010
	AROBusyStatus    uint16 = 0x0020
	AROAttachment    uint16 = 0x0040
	AROSubType       uint16 = 0x0080
	AROApptColor     uint16 = 0x0100
)

// writerVersion2Highlight is the first writer version carrying a change
// highlight in extended exceptions.
const writerVersion2Highlight = 0x3009

// RecurrencePattern is the calendar recurrence blob. WeekRecur,
// DayOfMonth and RecurNum are meaningful for the pattern types that carry
// them.
type RecurrencePattern struct {
	ReaderVersion         uint16
	WriterVersion         uint16
	RecurFrequency        uint16
	PatternType           uint16
	CalendarType          uint16
	FirstDateTime         uint32
	Period                uint32
	SlidingFlag           uint32
	WeekRecur             uint32
	DayOfMonth            uint32
	RecurNum              uint32
	EndType               uint32
	OccurrenceCount       uint32
	FirstDOW              uint32
	DeletedInstanceDates  []uint32
	ModifiedInstanceDates []uint32
	StartDate             uint32
	EndDate               uint32
}

// ExceptionInfo describes one modified occurrence. Only the fields named
// by OverrideFlags travel on the wire.
type ExceptionInfo struct {
	StartDateTime     uint32
	EndDateTime       uint32
	OriginalStartDate uint32
	OverrideFlags     uint16
	Subject           string
	MeetingType       uint32
	ReminderDelta     uint32
	ReminderSet       uint32
	Location          string
	BusyStatus        uint32
	Attachment        uint32
	SubType           uint32
	AppointmentColor  uint32
}

// ChangeHighlight is present in extended exceptions of newer writers.
// Size counts Value plus Reserved.
type ChangeHighlight struct {
	Size     uint32
	Value    uint32
	Reserved []byte
}

// ExtendedException carries the wide subject and location of an
// exception.
type ExtendedException struct {
	ChangeHighlight   ChangeHighlight
	ReservedBlockEE1  []byte
	StartDateTime     uint32
	EndDateTime       uint32
	OriginalStartDate uint32
	Subject           string
	Location          string
	ReservedBlockEE2  []byte
}

// ApptRecurPattern is the appointment recurrence blob. Exceptions and
// ExtendedExceptions have the same length.
type ApptRecurPattern struct {
	RecurPattern       RecurrencePattern
	ReaderVersion2     uint32
	WriterVersion2     uint32
	StartTimeOffset    uint32
	EndTimeOffset      uint32
	Exceptions         []ExceptionInfo
	ReservedBlock1     []byte
	ExtendedExceptions []ExtendedException
	ReservedBlock2     []byte
}

// GlobalObjectID identifies a meeting across mailboxes.
type GlobalObjectID struct {
	ArrayID      GUID
	Year         uint16
	Month        uint8
	Day          uint8
	CreationTime uint64
	X            [8]byte
	Data         []byte
}

func (p *Pull) uint32s(n uint32) ([]uint32, error) {
	if uint64(n)*4 > uint64(p.Remaining()) {
		return nil, ErrBufSize
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]uint32, n)
	var err error
	for i := range out {
		if out[i], err = p.Uint32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Pull) sizedBytes() ([]byte, error) {
	n, err := p.Uint32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return p.Bytes(int(n))
}

func (p *Pull) RecurrencePattern() (*RecurrencePattern, error) {
	r := &RecurrencePattern{}
	var err error
	for _, dst := range []*uint16{&r.ReaderVersion, &r.WriterVersion,
		&r.RecurFrequency, &r.PatternType, &r.CalendarType} {
		if *dst, err = p.Uint16(); err != nil {
			return nil, err
		}
	}
	for _, dst := range []*uint32{&r.FirstDateTime, &r.Period, &r.SlidingFlag} {
		if *dst, err = p.Uint32(); err != nil {
			return nil, err
		}
	}
	switch r.PatternType {
	case PatternDay:
	case PatternWeek:
		if r.WeekRecur, err = p.Uint32(); err != nil {
			return nil, err
		}
	case PatternMonth, PatternMonthEnd, PatternHjMonth, PatternHjMonthEnd:
		if r.DayOfMonth, err = p.Uint32(); err != nil {
			return nil, err
		}
	case PatternMonthNth, PatternHjMonthNth:
		if r.WeekRecur, err = p.Uint32(); err != nil {
			return nil, err
		}
		if r.RecurNum, err = p.Uint32(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: pattern type %#x", ErrBadSwitch, r.PatternType)
	}
	for _, dst := range []*uint32{&r.EndType, &r.OccurrenceCount, &r.FirstDOW} {
		if *dst, err = p.Uint32(); err != nil {
			return nil, err
		}
	}
	n, err := p.Uint32()
	if err != nil {
		return nil, err
	}
	if r.DeletedInstanceDates, err = p.uint32s(n); err != nil {
		return nil, err
	}
	if n, err = p.Uint32(); err != nil {
		return nil, err
	}
	if r.ModifiedInstanceDates, err = p.uint32s(n); err != nil {
		return nil, err
	}
	if r.StartDate, err = p.Uint32(); err != nil {
		return nil, err
	}
	if r.EndDate, err = p.Uint32(); err != nil {
		return nil, err
	}
	return r, nil
}

// exceptionString reads the narrow (length+1, length, bytes) form.
func (p *Pull) exceptionString() (string, error) {
	n1, err := p.Uint16()
	if err != nil {
		return "", err
	}
	n2, err := p.Uint16()
	if err != nil {
		return "", err
	}
	if uint32(n1) != uint32(n2)+1 {
		return "", fmt.Errorf("%w: exception string lengths %d/%d", ErrFormat, n1, n2)
	}
	b, err := p.Bytes(int(n2))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *Pull) exceptionInfo() (ExceptionInfo, error) {
	var r ExceptionInfo
	var err error
	for _, dst := range []*uint32{&r.StartDateTime, &r.EndDateTime, &r.OriginalStartDate} {
		if *dst, err = p.Uint32(); err != nil {
			return r, err
		}
	}
	if r.OverrideFlags, err = p.Uint16(); err != nil {
		return r, err
	}
	f := r.OverrideFlags
	if f&AROSubject != 0 {
		if r.Subject, err = p.exceptionString(); err != nil {
			return r, err
		}
	}
	for _, o := range []struct {
		flag uint16
		dst  *uint32
	}{{AROMeetingType, &r.MeetingType}, {AROReminderDelta, &r.ReminderDelta}, {AROReminder, &r.ReminderSet}} {
		if f&o.flag != 0 {
			if *o.dst, err = p.Uint32(); err != nil {
				return r, err
			}
		}
	}
	if f&AROLocation != 0 {
		if r.Location, err = p.exceptionString(); err != nil {
			return r, err
		}
	}
	for _, o := range []struct {
		flag uint16
		dst  *uint32
	}{{AROBusyStatus, &r.BusyStatus}, {AROAttachment, &r.Attachment}, {AROSubType, &r.SubType}, {AROApptColor, &r.AppointmentColor}} {
		if f&o.flag != 0 {
			if *o.dst, err = p.Uint32(); err != nil {
				return r, err
			}
		}
	}
	return r, nil
}

// wideCounted reads a u16 character count followed by UTF-16LE text.
func (p *Pull) wideCounted() (string, error) {
	n, err := p.Uint16()
	if err != nil {
		return "", err
	}
	b, err := p.take(int(n) * 2)
	if err != nil {
		return "", err
	}
	return decodeUTF16(b)
}

func (p *Pull) extendedException(writerVersion2 uint32, flags uint16) (ExtendedException, error) {
	var r ExtendedException
	var err error
	if writerVersion2 >= writerVersion2Highlight {
		if r.ChangeHighlight.Size, err = p.Uint32(); err != nil {
			return r, err
		}
		if r.ChangeHighlight.Value, err = p.Uint32(); err != nil {
			return r, err
		}
		if r.ChangeHighlight.Size < 4 {
			return r, fmt.Errorf("%w: change highlight size %d", ErrFormat, r.ChangeHighlight.Size)
		}
		if r.ChangeHighlight.Size > 4 {
			if r.ChangeHighlight.Reserved, err = p.Bytes(int(r.ChangeHighlight.Size - 4)); err != nil {
				return r, err
			}
		}
	}
	if r.ReservedBlockEE1, err = p.sizedBytes(); err != nil {
		return r, err
	}
	named := flags&(AROSubject|AROLocation) != 0
	if named {
		for _, dst := range []*uint32{&r.StartDateTime, &r.EndDateTime, &r.OriginalStartDate} {
			if *dst, err = p.Uint32(); err != nil {
				return r, err
			}
		}
	}
	if flags&AROSubject != 0 {
		if r.Subject, err = p.wideCounted(); err != nil {
			return r, err
		}
	}
	if flags&AROLocation != 0 {
		if r.Location, err = p.wideCounted(); err != nil {
			return r, err
		}
	}
	if named {
		if r.ReservedBlockEE2, err = p.sizedBytes(); err != nil {
			return r, err
		}
	}
	return r, nil
}

func (p *Pull) ApptRecurPattern() (*ApptRecurPattern, error) {
	rp, err := p.RecurrencePattern()
	if err != nil {
		return nil, err
	}
	r := &ApptRecurPattern{RecurPattern: *rp}
	for _, dst := range []*uint32{&r.ReaderVersion2, &r.WriterVersion2, &r.StartTimeOffset, &r.EndTimeOffset} {
		if *dst, err = p.Uint32(); err != nil {
			return nil, err
		}
	}
	n, err := p.Uint16()
	if err != nil {
		return nil, err
	}
	if int(n)*14 > p.Remaining() {
		return nil, ErrBufSize
	}
	r.Exceptions = make([]ExceptionInfo, n)
	for i := range r.Exceptions {
		if r.Exceptions[i], err = p.exceptionInfo(); err != nil {
			return nil, err
		}
	}
	if r.ReservedBlock1, err = p.sizedBytes(); err != nil {
		return nil, err
	}
	r.ExtendedExceptions = make([]ExtendedException, n)
	for i := range r.ExtendedExceptions {
		r.ExtendedExceptions[i], err = p.extendedException(r.WriterVersion2, r.Exceptions[i].OverrideFlags)
		if err != nil {
			return nil, err
		}
	}
	if r.ReservedBlock2, err = p.sizedBytes(); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Pull) GlobalObjectID() (*GlobalObjectID, error) {
	r := &GlobalObjectID{}
	var err error
	if r.ArrayID, err = p.GUID(); err != nil {
		return nil, err
	}
	hi, err := p.Uint8()
	if err != nil {
		return nil, err
	}
	lo, err := p.Uint8()
	if err != nil {
		return nil, err
	}
	r.Year = uint16(hi)<<8 | uint16(lo)
	if r.Month, err = p.Uint8(); err != nil {
		return nil, err
	}
	if r.Day, err = p.Uint8(); err != nil {
		return nil, err
	}
	if r.CreationTime, err = p.Uint64(); err != nil {
		return nil, err
	}
	x, err := p.take(8)
	if err != nil {
		return nil, err
	}
	copy(r.X[:], x)
	if r.Data, err = p.BinEx(); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Push) uint32s(v []uint32) error {
	if err := p.Uint32(uint32(len(v))); err != nil {
		return err
	}
	for _, x := range v {
		if err := p.Uint32(x); err != nil {
			return err
		}
	}
	return nil
}

func (p *Push) sizedBytes(b []byte) error {
	if err := p.Uint32(uint32(len(b))); err != nil {
		return err
	}
	return p.PutBytes(b)
}

func (p *Push) RecurrencePattern(r *RecurrencePattern) error {
	for _, v := range []uint16{r.ReaderVersion, r.WriterVersion, r.RecurFrequency,
		r.PatternType, r.CalendarType} {
		if err := p.Uint16(v); err != nil {
			return err
		}
	}
	for _, v := range []uint32{r.FirstDateTime, r.Period, r.SlidingFlag} {
		if err := p.Uint32(v); err != nil {
			return err
		}
	}
	var specific []uint32
	switch r.PatternType {
	case PatternDay:
	case PatternWeek:
		specific = []uint32{r.WeekRecur}
	case PatternMonth, PatternMonthEnd, PatternHjMonth, PatternHjMonthEnd:
		specific = []uint32{r.DayOfMonth}
	case PatternMonthNth, PatternHjMonthNth:
		specific = []uint32{r.WeekRecur, r.RecurNum}
	default:
		return fmt.Errorf("%w: pattern type %#x", ErrBadSwitch, r.PatternType)
	}
	for _, v := range append(specific, r.EndType, r.OccurrenceCount, r.FirstDOW) {
		if err := p.Uint32(v); err != nil {
			return err
		}
	}
	if err := p.uint32s(r.DeletedInstanceDates); err != nil {
		return err
	}
	if err := p.uint32s(r.ModifiedInstanceDates); err != nil {
		return err
	}
	if err := p.Uint32(r.StartDate); err != nil {
		return err
	}
	return p.Uint32(r.EndDate)
}

func (p *Push) exceptionString(s string) error {
	if len(s) >= 0xFFFF {
		return fmt.Errorf("%w: exception string of %d bytes", ErrFormat, len(s))
	}
	if err := p.Uint16(uint16(len(s) + 1)); err != nil {
		return err
	}
	if err := p.Uint16(uint16(len(s))); err != nil {
		return err
	}
	return p.PutBytes([]byte(s))
}

func (p *Push) exceptionInfo(r *ExceptionInfo) error {
	for _, v := range []uint32{r.StartDateTime, r.EndDateTime, r.OriginalStartDate} {
		if err := p.Uint32(v); err != nil {
			return err
		}
	}
	f := r.OverrideFlags
	if err := p.Uint16(f); err != nil {
		return err
	}
	if f&AROSubject != 0 {
		if err := p.exceptionString(r.Subject); err != nil {
			return err
		}
	}
	for _, o := range []struct {
		flag uint16
		v    uint32
	}{{AROMeetingType, r.MeetingType}, {AROReminderDelta, r.ReminderDelta}, {AROReminder, r.ReminderSet}} {
		if f&o.flag != 0 {
			if err := p.Uint32(o.v); err != nil {
				return err
			}
		}
	}
	if f&AROLocation != 0 {
		if err := p.exceptionString(r.Location); err != nil {
			return err
		}
	}
	for _, o := range []struct {
		flag uint16
		v    uint32
	}{{AROBusyStatus, r.BusyStatus}, {AROAttachment, r.Attachment}, {AROSubType, r.SubType}, {AROApptColor, r.AppointmentColor}} {
		if f&o.flag != 0 {
			if err := p.Uint32(o.v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Push) wideCounted(s string) error {
	b, err := encodeUTF16(s)
	if err != nil {
		return err
	}
	if len(b)/2 > 0xFFFF {
		return fmt.Errorf("%w: %d characters", ErrFormat, len(b)/2)
	}
	if err := p.Uint16(uint16(len(b) / 2)); err != nil {
		return err
	}
	return p.PutBytes(b)
}

func (p *Push) extendedException(writerVersion2 uint32, flags uint16, r *ExtendedException) error {
	if writerVersion2 >= writerVersion2Highlight {
		h := r.ChangeHighlight
		if h.Size < 4 || int(h.Size)-4 != len(h.Reserved) {
			return fmt.Errorf("%w: change highlight size %d", ErrFormat, h.Size)
		}
		if err := p.Uint32(h.Size); err != nil {
			return err
		}
		if err := p.Uint32(h.Value); err != nil {
			return err
		}
		if err := p.PutBytes(h.Reserved); err != nil {
			return err
		}
	}
	if err := p.sizedBytes(r.ReservedBlockEE1); err != nil {
		return err
	}
	named := flags&(AROSubject|AROLocation) != 0
	if named {
		for _, v := range []uint32{r.StartDateTime, r.EndDateTime, r.OriginalStartDate} {
			if err := p.Uint32(v); err != nil {
				return err
			}
		}
	}
	if flags&AROSubject != 0 {
		if err := p.wideCounted(r.Subject); err != nil {
			return err
		}
	}
	if flags&AROLocation != 0 {
		if err := p.wideCounted(r.Location); err != nil {
			return err
		}
	}
	if named {
		return p.sizedBytes(r.ReservedBlockEE2)
	}
	return nil
}

func (p *Push) ApptRecurPattern(r *ApptRecurPattern) error {
	if len(r.Exceptions) != len(r.ExtendedExceptions) {
		return fmt.Errorf("%w: %d exceptions but %d extended exceptions",
			ErrFormat, len(r.Exceptions), len(r.ExtendedExceptions))
	}
	if len(r.Exceptions) > 0xFFFF {
		return fmt.Errorf("%w: %d exceptions", ErrFormat, len(r.Exceptions))
	}
	if err := p.RecurrencePattern(&r.RecurPattern); err != nil {
		return err
	}
	for _, v := range []uint32{r.ReaderVersion2, r.WriterVersion2, r.StartTimeOffset, r.EndTimeOffset} {
		if err := p.Uint32(v); err != nil {
			return err
		}
	}
	if err := p.Uint16(uint16(len(r.Exceptions))); err != nil {
		return err
	}
	for i := range r.Exceptions {
		if err := p.exceptionInfo(&r.Exceptions[i]); err != nil {
			return err
		}
	}
	if err := p.sizedBytes(r.ReservedBlock1); err != nil {
		return err
	}
	for i := range r.ExtendedExceptions {
		err := p.extendedException(r.WriterVersion2, r.Exceptions[i].OverrideFlags, &r.ExtendedExceptions[i])
		if err != nil {
			return err
		}
	}
	return p.sizedBytes(r.ReservedBlock2)
}

func (p *Push) GlobalObjectID(r *GlobalObjectID) error {
	if err := p.GUID(r.ArrayID); err != nil {
		return err
	}
	for _, v := range []uint8{uint8(r.Year >> 8), uint8(r.Year), r.Month, r.Day} {
		if err := p.Uint8(v); err != nil {
			return err
		}
	}
	if err := p.Uint64(r.CreationTime); err != nil {
		return err
	}
	if err := p.PutBytes(r.X[:]); err != nil {
		return err
	}
	return p.BinEx(r.Data)
}
