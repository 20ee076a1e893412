package bind_group_provider

// BufferWrite is one staged write of Data into the buffer bound at Binding on Provider, starting at Offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
